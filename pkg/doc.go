// Package pkg provides the libraries behind diagramtool, which draws UML
// class diagrams of Python code.
//
// # Overview
//
// The pkg directory is organized by pipeline stage:
//
//  1. [extract] - Front ends that turn source files into a structural model
//  2. [model] - The structural model: classes, enums, functions, globals
//  3. [diagram] - Hierarchy analysis, phase handles, relations, layout documents
//  4. [layout] - Placement strategies for class and enum boxes
//  5. [render] - SVG, TikZ, DOT, JSON, PDF and PNG output
//  6. [pipeline] - Orchestration (parse → layout → render) with caching
//  7. [server] - HTTP preview server over the pipeline
//
// # Architecture
//
// The typical data flow through diagramtool:
//
//	Python entry file (+ imported modules)
//	         ↓
//	    [extract/python] (tree-sitter CST → model)
//	         ↓
//	    [diagram] (stubs, levels, orphans, relations)
//	         ↓
//	    [layout] (box positions)
//	         ↓
//	    [render] (SVG/TikZ/DOT/JSON/PDF/PNG)
//
// # Quick Start
//
//	runner := pipeline.NewRunner(nil, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Entry:   "app/main.py",
//	    Formats: []string{"svg"},
//	})
//	if err != nil {
//	    return err
//	}
//	os.WriteFile("main.svg", result.Artifacts["svg"], 0o644)
//
// # Supporting Packages
//
//   - [cache] - Layout and artifact caches (file, memory, Redis)
//   - [errors] - Coded errors shared by every stage
//   - [observability] - Hooks for logging and metrics
//   - [buildinfo] - Version information
package pkg
