// Package core defines the shared language of defectgen.
//
// This package contains:
//   - The periodic table subset used to validate species (Element)
//   - Periodic cells (Lattice)
//   - Atomic sites and structures (Site, Structure)
//
// The Golden Rule: pkg/core imports ONLY stdlib.
// All other packages depend on core, not the reverse.
package core
