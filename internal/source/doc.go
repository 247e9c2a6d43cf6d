// Package source reads YANG statement trees from files. HCL files go through
// the hcl_adapter package; YAML and JSON files use a shared object layout in
// which every statement is a mapping with exactly one keyword key and an
// optional "substatements" list:
//
//	module: example
//	substatements:
//	  - namespace: urn:example
//	  - prefix: ex
//	  - container: top
//	    substatements:
//	      - leaf: name
//	        substatements:
//	          - type: string
//	  - rpc: reset
//	    substatements:
//	      - input:
//
// A null keyword value, as for input above, is a statement without an
// argument. Numbers and booleans are rendered as written. A file holds one
// statement or a list of them; YAML files may hold several documents.
package source
