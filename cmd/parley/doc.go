// Parley is a local-first CLI for conversing with LLM agents.
//
// It sends prompts to a provider through named agent personas, with a
// two-tier semantic response cache in front so repeated and rephrased
// prompts are answered locally.
//
// Usage:
//
//	parley chat "explain Go context cancellation"
//	parley chat -a reviewer --template explain --var topic=mutexes
//	parley agent add reviewer --system "You review Go code."
//	parley serve                      # stats dashboard and metrics
//	parley cache stats                # query the running dashboard
//
// See https://github.com/parley-cli/parley for full documentation.
package main
