package domain

// Request is the external invocation surface: what a job hands to ttrun for
// one run. It can come from a YAML/JSON file, flags, or both.
type Request struct {
	HostPort      string `yaml:"hostPort" json:"hostPort"`
	CredentialsID string `yaml:"credentialsId" json:"credentialsId"`
	ProjectFolder string `yaml:"projectFolder" json:"projectFolder"`
	TestSuite     string `yaml:"testSuite" json:"testSuite"`
	JCL           string `yaml:"jcl" json:"jcl"`
	Context       string `yaml:"context,omitempty" json:"context,omitempty"`
	// Workspace is the build workspace root; the CLI runs there.
	Workspace string            `yaml:"workspace,omitempty" json:"workspace,omitempty"`
	Env       map[string]string `yaml:"env,omitempty" json:"env,omitempty"`
}

// Merge returns a copy of r with every non-empty field of other applied.
func (r *Request) Merge(other *Request) *Request {
	if r == nil {
		return other
	}
	result := *r
	if other == nil {
		return &result
	}

	if other.HostPort != "" {
		result.HostPort = other.HostPort
	}
	if other.CredentialsID != "" {
		result.CredentialsID = other.CredentialsID
	}
	if other.ProjectFolder != "" {
		result.ProjectFolder = other.ProjectFolder
	}
	if other.TestSuite != "" {
		result.TestSuite = other.TestSuite
	}
	if other.JCL != "" {
		result.JCL = other.JCL
	}
	if other.Context != "" {
		result.Context = other.Context
	}
	if other.Workspace != "" {
		result.Workspace = other.Workspace
	}
	if len(other.Env) > 0 {
		env := make(map[string]string, len(r.Env)+len(other.Env))
		for k, v := range r.Env {
			env[k] = v
		}
		for k, v := range other.Env {
			env[k] = v
		}
		result.Env = env
	}
	return &result
}

// RunConfiguration returns the trimmed run parameters of r.
func (r *Request) RunConfiguration() *RunConfiguration {
	cfg := NewRunConfiguration(r.HostPort, r.CredentialsID, r.ProjectFolder, r.TestSuite, r.JCL)
	cfg.Context = r.Context
	return cfg
}
