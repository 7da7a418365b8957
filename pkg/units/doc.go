// Package units parses and formats resource quantities.
//
// Components on the canvas carry free-form resource requirements typed by
// users ("2 cores", "512MB", "1.5 GB", "500m"). This package normalizes them
// into one canonical unit per [Dimension] so that aggregation is plain
// float arithmetic:
//
//	CPU      cores (fractional allowed, "500m" = 0.5)
//	Memory   MB    ("1GB" = 1024)
//	Storage  GB    ("512MB" = 0.5, "1TB" = 1024)
//	Network  Mbps  ("1Gbps" = 1000)
//
// # Parsing
//
// [Parse] is strict and returns an INVALID_QUANTITY error for anything it
// does not recognize. [ParseOr] never fails and is what UI-facing callers use:
// malformed input falls back to a previous or default value.
//
//	q, err := units.Parse("1.5 GB", units.Memory) // 1536 MB
//	q := units.ParseOr("lots", units.Memory, units.Megabytes(256))
//
// # Formatting
//
// [Format] picks a display unit by threshold and always rounds up, so an
// aggregated total is never shown below the actual demand:
//
//	units.Format(units.Cores(1.8))        // "1.8 cores"
//	units.Format(units.Cores(0.25))       // "250m"
//	units.Format(units.Megabytes(1843.2)) // "1.9GB"
package units
