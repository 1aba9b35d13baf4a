// Command slidecast is the command line client for the slidecast daemon:
// it submits videos for processing and inspects job state over the HTTP
// API. The serve subcommand runs the daemon itself.
package main
