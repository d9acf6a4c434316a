package enrich

// attackSourceName is the source_name STIX uses for ATT&CK external
// references. Only references carrying this name hold ATT&CK IDs.
const attackSourceName = "mitre-attack"

// Bundle is the subset of a STIX 2.1 bundle that enrichment reads.
type Bundle struct {
	Type    string   `json:"type"`
	ID      string   `json:"id"`
	Objects []Object `json:"objects"`
}

// Object is a STIX domain object. Only the fields enrichment consumes
// are mapped; everything else in the bundle is ignored on decode.
type Object struct {
	Type               string              `json:"type"`
	ID                 string              `json:"id"`
	Name               string              `json:"name"`
	Description        string              `json:"description,omitempty"`
	Aliases            []string            `json:"aliases,omitempty"`
	Revoked            bool                `json:"revoked,omitempty"`
	Deprecated         bool                `json:"x_mitre_deprecated,omitempty"`
	ExternalReferences []ExternalReference `json:"external_references,omitempty"`
}

// ExternalReference is a STIX external reference entry.
type ExternalReference struct {
	SourceName  string `json:"source_name"`
	ExternalID  string `json:"external_id,omitempty"`
	URL         string `json:"url,omitempty"`
	Description string `json:"description,omitempty"`
}

// AttackID returns the object's ATT&CK external ID ("T1059", "S0002")
// or an empty string when the object has none.
func (o *Object) AttackID() string {
	for _, ref := range o.ExternalReferences {
		if ref.SourceName == attackSourceName && ref.ExternalID != "" {
			return ref.ExternalID
		}
	}
	return ""
}

// ReferenceURLs collects the non-empty URLs from the object's external
// references, preserving bundle order.
func (o *Object) ReferenceURLs() []string {
	var urls []string
	for _, ref := range o.ExternalReferences {
		if ref.URL != "" {
			urls = append(urls, ref.URL)
		}
	}
	return urls
}

// Active reports whether the object is still part of the current ATT&CK
// knowledge base. Revoked and deprecated objects are skipped during
// enrichment.
func (o *Object) Active() bool {
	return !o.Revoked && !o.Deprecated
}
