// Package a2a implements the client side of the Agent-to-Agent (A2A)
// protocol: agent card discovery over the well-known endpoint and message
// submission via JSON-RPC.
package a2a
