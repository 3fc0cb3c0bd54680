// Package geom defines the configuration objects of geoproof.
// A configuration is a DAG of points, lines and circles: free source
// objects plus objects derived from them by named constructions. Objects
// live in an Arena and are addressed by opaque ObjectID handles.
package geom
