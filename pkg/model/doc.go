// Package model defines the language-agnostic structural record extracted
// from source code: classes, enums, free functions and global variables.
//
// # Overview
//
// A [Model] is built by a front end (see package extract) one file at a
// time and the per-file results are folded together with [Merge]. Every
// keyed collection is an [OrderedMap] so that the order in which entities
// and members were discovered survives merging and serialization; layout
// and rendering depend on that order.
//
// # Relations
//
// Classes reference each other by name through three ordered sets:
//
//   - InheritFrom: declared base classes
//   - Aggregate: classes used as parameter types but not owned
//   - Composite: owned sub-objects (reserved; populated only by extended analysis)
//
// A base class may be named without being declared anywhere in the merged
// model (a library base, or a file that was not followed).
// [Model.MaterializeStubs] creates an empty class for each such name so
// that downstream analysis never dereferences a missing entity.
//
// # Merge Semantics
//
// [Merge] is explicit about precedence: keyed members merge recursively,
// sets union in first-seen order, and scalar fields take the incoming value.
// Merge is idempotent: merging a model with itself leaves it unchanged.
//
// # JSON Format
//
// Models serialize to a JSON object with four keyed sections:
//
//	{
//	  "classes": {
//	    "Shape": {
//	      "attributes": {"name": {"type": "str", "visibility": "public"}},
//	      "properties": {"area": {"type": "float", "visibility": "public", "mode": "r"}},
//	      "methods": {"scale": {"args": [{"name": "self", "type": "unknown"}], "returnType": "None", "isStatic": false, "visibility": "public"}},
//	      "inheritFrom": [], "aggregate": [], "composite": []
//	    }
//	  },
//	  "enums": {"Color": {"values": ["RED", "GREEN"], "methods": {}, "properties": {}}},
//	  "functions": {"main": {"args": [], "returnType": "None"}},
//	  "globalVariables": {"COUNT": {"type": "int"}}
//	}
//
// Use [WriteJSON] / [ReadJSON] for streams and [ExportJSON] / [ImportJSON]
// for files.
package model
