// Package export writes run artifacts: per-sweep PNG heat maps, the GIF
// animation, the magnetization text file and plots, HTML charts and SVG.
//
// Sinks implement the observer interfaces from package ising and are
// registered on a Runner:
//
//	r.AddImageSink(export.NewPNGFrameSink("results", "ising"))
//	r.AddAnimationSink(export.NewGIFAnimationSink("results/ising.gif", 10, 4))
//	r.AddMagnetizationSink(export.NewTextSeriesSink("results/magnetization.txt"))
package export
