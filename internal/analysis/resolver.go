package analysis

// ResolveIdentifier combines the workspace prefix and a contract name
// into the canonical namespace identifier.
func ResolveIdentifier(prefix, contractName string) string {
	if prefix == "" {
		return contractName
	}
	return prefix + "." + contractName
}
