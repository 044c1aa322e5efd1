// Package compiler provides the SixtyFPS compiler APIs for loading object trees,
// lowering them through the compiler passes, and printing the result.
//
// Main sub-packages:
//
//   - object_tree: Elements, components, bound expressions and named references
//   - passes: Lowering passes over a component
//     - repeater_component: moves repeated elements into their own sub-components
//   - loader: YAML tree documents to object trees
//   - printer: Object trees to YAML
//   - config: Compiler options and the sixtyfps.yaml project file
//   - telemetry: OpenTelemetry tracing of the passes
//   - util: Source locations and parse errors
//
// Usage:
//
//	cfg := config.NewCompilerConfig(config.WithOutputDir("build"))
//	err := compiler.NewCompiler(cfg).Compile(ctx, []string{"main.yaml"})
package compiler
