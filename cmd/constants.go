package cmd

// DefaultProjectConfigFilename describes the default config filename phink looks for in a
// contract directory.
const DefaultProjectConfigFilename = "phink.json"

// MetadataRelPath is the conventional location of a contract's ABI metadata document relative to
// its directory, simplified to a fixed file name since phink discovers contracts by directory,
// not by an explicit flag per contract.
const MetadataRelPath = "target/ink/metadata.json"

// ArtifactRelPath is the conventional location of a contract's compiled runtime artifact relative
// to its directory, a well-known relative path under target/.
const ArtifactRelPath = "target/ink/artifact"
