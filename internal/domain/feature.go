package domain

// FeatureState is the current toggle value for a feature key.
type FeatureState struct {
	Key     string
	Enabled bool
	Message string
}
