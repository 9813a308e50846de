// Package harness runs resolution scenarios: a schema, a target and a set
// of overrides, with assertions on the resolved mapping and the artifacts
// emitted from it.
//
// # Scenario Format
//
//	name: qemu_debug
//	description: "SMP kernel on QEMU with debug defaults"
//	kconfig: ../../../../testdata/kconfig/Kconfig.cue
//	board: qemu
//	build_type: debug
//	overrides:            # optional; replaces the board's defconfig
//	  SMP: "y"
//	assertions:
//	  - type: value
//	    symbol: CPUS_NR
//	    value: 4
//	  - type: absent
//	    symbol: KERNEL_ABI
//	  - type: order
//	    symbols: [SMP, CPUS_NR]
//	  - type: flags
//	    values: [smp, heap]
//	  - type: warnings
//	    count: 0
//
// The kconfig path is relative to the scenario file. Without an overrides
// section the defconfig under the schema directory is used, exactly as the
// CLI does.
//
// # Assertion Types
//
//   - value: the symbol resolved to the given value
//   - absent: the symbol is not in the mapping
//   - order: the symbols appear in the mapping in the given order
//   - flags: the emitted build flags equal the given list
//   - constants: the emitted constants include the given name/value pairs
//   - warnings: resolution produced exactly count warnings
//
// RunWithGolden additionally compares a text snapshot of the resolution
// against testdata/golden/<name>.golden.
package harness
