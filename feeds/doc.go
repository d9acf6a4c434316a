// Package feeds provides clients for upstream threat intelligence
// sources. Each client implements the Source interface and converts the
// upstream payload into threat documents ready for the processing
// pipeline.
//
// Sources are declared in a YAML file so deployments can add or remove
// feeds without code changes. API keys are never stored in the file;
// each source names the environment variable holding its key.
//
// Three source kinds are supported: "otx" (AlienVault OTX subscribed
// pulses), "nvd" (the NVD CVE 2.0 API) and "cert" (any RSS or Atom
// advisory feed).
package feeds
