// Package devices discovers capture hardware: enumerating cameras through
// the encoder's device-listing mode (or /dev for v4l2) and watching udev
// netlink events for cameras being plugged and unplugged.
package devices
