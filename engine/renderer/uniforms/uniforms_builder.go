package uniforms

// ShaderUniformsOption is a functional option for configuring a ShaderUniforms
// registry during construction.
type ShaderUniformsOption func(*shaderUniforms)

// WithLabel sets the debug label used in GPU buffer labels and log output.
//
// Parameters:
//   - label: the debug label
//
// Returns:
//   - ShaderUniformsOption: the configured option
func WithLabel(label string) ShaderUniformsOption {
	return func(su *shaderUniforms) {
		su.label = label
	}
}
