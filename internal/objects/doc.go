// Package objects holds the Object Backends of the model types and the
// slot store. RegisterAll adds them to a registry in dependency order.
package objects
