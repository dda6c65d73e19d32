// Package io provides JSON import and export for splitter plans.
//
// # Overview
//
// Plans are written as a small JSON document so they can be rendered later,
// stored, or consumed by external tools:
//
//	{
//	  "version": 1,
//	  "input": [54, 18, 24],
//	  "demand": [9, 4, 3],
//	  "order": [0, 2, 1],
//	  "layers": [
//	    {"arity": 2, "total": 2, "return": false, "takes": [1, 0, 0]},
//	    ...
//	  ],
//	  "splitters": [1, 1, 1, 1],
//	  "summary": {"layers": 4, "splitters": 4, "returns": 0}
//	}
//
// Layers are listed input-first. Each takes vector is indexed in plan order,
// which is the input sorted descending; "order" maps plan outputs back to
// input positions.
//
// # Import
//
// Use [ImportJSON] to read a plan from a file path, or [ReadJSON] to read
// from any io.Reader. Imported plans are verified: a document whose layers do
// not deliver exactly the requested ratios is rejected.
//
// # Export
//
// Use [ExportJSON] to write a plan to a file, or [WriteJSON] to write to any
// io.Writer. Import after export yields an identical plan.
package io
