// Command melodymind renders talking-head dialogue episodes. The run
// subcommand drives the full pipeline for one decade; the remaining
// subcommands inspect the environment, the run journal, and configuration.
package main
