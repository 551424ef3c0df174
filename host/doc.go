// Package host implements the routing host: an LLM-driven agent that
// delegates natural language tasks to remote A2A agents. The host assembles
// its routing instruction from the discovered agent catalog, exposes a single
// send_message capability to the model and reduces the resulting event stream
// to one final answer per user turn.
package host
