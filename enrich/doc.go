// Package enrich augments extracted threat entities with MITRE ATT&CK
// context from a locally cached STIX 2.1 bundle.
//
// The bundle is downloaded once from the MITRE CTI repository (or any
// compatible URL) and stored as a plain JSON file. Enrichment works
// entirely from that local copy, so a missing cache file degrades to a
// no-op rather than an error: entities pass through unchanged and a
// warning is logged.
//
// Lookups match the upper-cased entity name against ATT&CK external IDs
// ("T1059", "TA0002") first and object names ("APT28", "Mimikatz")
// second. Results, including misses, are held in an in-process TTL cache
// so repeated extraction batches do not rescan the bundle.
package enrich
