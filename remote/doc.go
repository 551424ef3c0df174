// Package remote manages discovery of and connections to remote A2A agents.
// A Manager resolves agent cards for a configured set of addresses, keeps one
// connection per discovered agent name and exposes catalog views used in
// routing prompts.
package remote
