// Package output renders chat replies in text, JSON, or markdown.
package output
