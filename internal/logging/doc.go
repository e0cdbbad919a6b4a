// Package logging wraps log/slog with typed attribute constructors and a
// rotation-friendly console/JSON handler pair, matching the shape the rest
// of the dynamo-fod stack expects from its ambient logging layer.
package logging
