package relay

// ValidateMetadata checks the metadata of an interface and reports the first
// violation found, visiting methods in name order. Default methods are not
// checked.
func ValidateMetadata(metadata *InterfaceMetadata) error {
	for _, m := range metadata.Methods() {
		if m.IsDefault {
			continue
		}
		if err := validateMethod(metadata, m); err != nil {
			return err
		}
	}
	return nil
}

func validateMethod(metadata *InterfaceMetadata, m *MethodMetadata) error {
	var verbs []string
	for _, a := range m.Annotations {
		if a.IsHTTPMethod {
			verbs = append(verbs, a.Name)
		}
	}
	switch {
	case len(verbs) == 0:
		return missingVerbError(metadata.Name, m.Name)
	case len(verbs) > 1:
		return duplicateVerbError(metadata.Name, m.Name, verbs)
	}

	bound := make(map[string]bool)
	for _, p := range m.PathParameters() {
		bound[p.Annotation.Value()] = true
	}
	for _, token := range PathTokens(metadata.FullPath(m)) {
		if !bound[token] {
			return unresolvedPathParamError(metadata.Name, m.Name, token)
		}
	}
	return nil
}
