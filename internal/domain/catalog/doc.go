/*
Package catalog holds the simulations the desktop can launch: the academy
modules and vulnerability labs that ship with the hub, plus any YAML or
TOML files found in a catalog directory.

A simulation file looks like:

	id: dns-poison
	title: DNS Cache Poisoning
	kind: vulnerability
	simulation:
	  scenario: Resolver answers look wrong. Find out why.
	  script:
	    - command: dig <host>
	      output: ";; ANSWER SECTION: evil.example. 60 IN A 6.6.6.6"
	    - command: help
	      output: ["Available commands:", "dig <host>", "exit"]
	      delay: 200

Watch keeps the catalog in step with its directory while the server runs.
*/
package catalog
