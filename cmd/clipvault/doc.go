// Package main hosts the clipvault CLI entrypoint and command graph.
//
// The Cobra-based command tree covers the whole pipeline: recording from a
// capture source, listing clips across both tiers, fetching and cropping
// footage by wall-clock interval, syncing the staging directory to the
// remote tier, and configuration scaffolding. Configuration resolution and
// logging setup are centralized so subcommands focus on user experience.
//
// Keep this package lean: add new functionality to the internal packages
// first, then surface it through dedicated commands or flags here.
package main
