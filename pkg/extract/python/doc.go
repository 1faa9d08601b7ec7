// Package python is the Python front end: it extracts a [model.Model] from
// Python source using the tree-sitter Python grammar.
//
// # Extraction
//
// [Extractor.Extract] parses an entry file and, with
// extract.Options.FollowImports, every file reachable through import
// statements, merging the per-file models with model.Merge. Each file is
// visited at most once per call; the visited set and the parsed tree cache
// live in a per-call run context, so nothing leaks between calls.
//
// Before member extraction a pre-pass collects the names of all classes
// declared in the reachable files. Method parameters annotated with one of
// those classes make it an aggregate of the owning class.
//
// # Declarations
//
//   - A class with an enumeration base (Enum, IntEnum, StrEnum, Flag,
//     IntFlag, optionally qualified with "enum.") is an enum; its values are
//     the plain-name assignment targets of its body.
//   - A function in a class body is a property accessor when decorated with
//     @property (read) or @<name>.setter (write); both give mode "rw".
//     Anything else is a method, static when decorated with @staticmethod.
//   - Nested classes and functions get dotted names (Outer.Inner).
//   - Assignments to self.<name> in __init__ become attributes.
//
// # Type Inference
//
// Return types: explicit annotation, then a trailing "# type: T" comment on
// the definition line, then the conventional type of special methods
// (__init__ is None, __str__ is str, ...), then "unknown".
//
// Variables and attributes: explicit annotation, then the runtime kind of a
// literal value (str, bytes, int, float, bool), then a trailing type
// comment, then "unknown". An unresolvable type is never an error.
//
// # Imports
//
// "from .mod import x" must resolve to mod.py or mod/__init__.py relative
// to the importing file (one directory up per extra dot); a missing target
// aborts extraction with FILE_NOT_FOUND. Absolute imports resolve the same
// way under the importer's directory or the entry's directory and are
// silently skipped when nothing matches.
package python
