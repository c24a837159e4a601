// Package domain holds the festival data model shared by all other packages:
// beers, datasets, rating entries and the events broadcast to clients.
package domain
