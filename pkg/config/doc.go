// Package config loads the YAML configuration of the ftcan tools.
//
// A configuration file selects the frame source, the decoder families and
// their reassembly policy, and the outputs. Every field is optional; Load
// starts from Default and overlays the file:
//
//	source:
//	  type: slcan
//	  device: /dev/ttyACM0
//	decoder:
//	  sequencing: strict
//	  stale_after: 500ms
//	  routes:
//	    - id: "0x14081CFF"
//	      policy: length_prefixed
//	      format: record5le
//	output:
//	  format: jsonl
//
// Identifiers are written as hexadecimal strings, durations in
// time.ParseDuration syntax. Command-line flags override file values.
package config
