package config

// SourceFileExt is the canonical source file extension.
const SourceFileExt = ".sum"

// SourceFileExtensions are all recognized source file extensions.
var SourceFileExtensions = []string{".sum", ".sumt"}

// DefaultConfigFile is the config file name looked up in the working
// directory when none is given on the command line.
const DefaultConfigFile = "sumlower.yaml"

// DefaultOutputFile receives the lowered rendering when the config names no
// output path.
const DefaultOutputFile = "lowered.sum"

// EngineVersion is the version reported by the CLI and checked against the
// config's `requires` constraint.
const EngineVersion = "0.4.1"
