// Package dashboard serves the long-running chat surface over HTTP: a
// chat endpoint backed by a shared cache-fronted engine, a JSON stats
// endpoint, a Prometheus scrape endpoint, and a health check.
package dashboard
