// Package ner extracts named threat entities from intelligence text.
//
// Extraction is hybrid: a table of regular expressions catches the
// high-precision indicator formats (CVE identifiers, ATT&CK technique IDs,
// APT group names, IP addresses, file hashes), while an ai.EntityExtractor
// model catches entities regex cannot, such as malware families mentioned by
// name. Results from both arms are merged, deduplicated by (name, type), and
// filtered by confidence.
//
// The model arm is optional. When it fails or is absent the regex arm still
// produces results, so ingestion degrades rather than stops when the LLM
// service is down.
package ner
