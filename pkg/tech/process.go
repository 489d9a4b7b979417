package tech

import "strconv"

// Process is the data-driven description of a fabrication process. It is the
// unit stored in TOML technology files and in a [Registry].
type Process struct {
	Name        string      `toml:"name" json:"name"`
	Description string      `toml:"description,omitempty" json:"description,omitempty"`
	Reserved    string      `toml:"reserved,omitempty" json:"reserved,omitempty"` // ReservedFunc strategy name
	Layers      []LayerSpec `toml:"layer" json:"layers"`
	Vias        []ViaSpec   `toml:"via" json:"vias"`
}

// LayerSpec describes one routing layer of a process.
type LayerSpec struct {
	Name        string  `toml:"name" json:"name"`
	Height      int     `toml:"height" json:"height"`
	Width       float64 `toml:"width" json:"width"`
	Spacing     float64 `toml:"spacing" json:"spacing"`
	RailSpacing float64 `toml:"rail_spacing,omitempty" json:"rail_spacing,omitempty"`
}

// ViaSpec describes one via type of a process.
type ViaSpec struct {
	Name    string  `toml:"name" json:"name"`
	Lower   string  `toml:"lower" json:"lower"`
	Upper   string  `toml:"upper" json:"upper"`
	Width   float64 `toml:"width" json:"width"`
	Height  float64 `toml:"height" json:"height"`
	Spacing float64 `toml:"spacing" json:"spacing"`
}

func metals(n int, width, spacing, rail float64) []LayerSpec {
	specs := make([]LayerSpec, n)
	for i := range specs {
		specs[i] = LayerSpec{
			Name:        metalName(i + 1),
			Height:      i + 1,
			Width:       width,
			Spacing:     spacing,
			RailSpacing: rail,
		}
	}
	return specs
}

func metalName(i int) string { return "metal-" + strconv.Itoa(i) }

func viaChain(layers []LayerSpec, size, spacing float64) []ViaSpec {
	vias := make([]ViaSpec, 0, len(layers)-1)
	for i := 0; i+1 < len(layers); i++ {
		lo, hi := layers[i], layers[i+1]
		vias = append(vias, ViaSpec{
			Name:    lo.Name + "-" + hi.Name + "-con",
			Lower:   lo.Name,
			Upper:   hi.Name,
			Width:   size,
			Height:  size,
			Spacing: spacing,
		})
	}
	return vias
}

// MoCMOS returns the scalable MOSIS CMOS process: poly and six metals, in
// lambda.
func MoCMOS() Process {
	layers := append([]LayerSpec{{Name: "poly-1", Height: 0, Width: 2, Spacing: 3, RailSpacing: 3}},
		metals(6, 3, 3, 6)...)
	layers[6].Width, layers[6].Spacing, layers[6].RailSpacing = 5, 4, 8
	vias := viaChain(layers, 5, 3)
	vias[3].Width, vias[3].Height = 6, 6
	vias[5].Width, vias[5].Height, vias[5].Spacing = 7, 7, 4
	return Process{
		Name:        "mocmos",
		Description: "MOSIS scalable CMOS, poly + 6 metals",
		Reserved:    ReservedTracks,
		Layers:      layers,
		Vias:        vias,
	}
}

// TSMC180 returns a 180nm-style process table expressed in lambda.
func TSMC180() Process {
	layers := append([]LayerSpec{{Name: "poly-1", Height: 0, Width: 1.8, Spacing: 2.5, RailSpacing: 2.5}},
		metals(6, 2.3, 2.3, 5)...)
	layers[6].Width, layers[6].Spacing, layers[6].RailSpacing = 4.4, 4.6, 6
	vias := viaChain(layers, 2.6, 2.6)
	vias[0].Width, vias[0].Height = 2.2, 2.2
	vias[5].Width, vias[5].Height, vias[5].Spacing = 3.6, 3.6, 3.5
	return Process{
		Name:        "tsmc180",
		Description: "180nm logic process, poly + 6 metals",
		Reserved:    ReservedTracks,
		Layers:      layers,
		Vias:        vias,
	}
}

// CMOS90 returns a 90nm-style process table with nine metals.
func CMOS90() Process {
	layers := append([]LayerSpec{{Name: "poly-1", Height: 0, Width: 1, Spacing: 1.4, RailSpacing: 1.4}},
		metals(9, 1.2, 1.2, 2.4)...)
	for i := 7; i <= 9; i++ {
		layers[i].Width, layers[i].Spacing, layers[i].RailSpacing = 4, 4, 6
	}
	vias := viaChain(layers, 1.4, 1.4)
	for i := 6; i < 9; i++ {
		vias[i].Width, vias[i].Height, vias[i].Spacing = 3.6, 3.6, 3.4
	}
	return Process{
		Name:        "cmos90",
		Description: "90nm logic process, poly + 9 metals",
		Reserved:    ReservedDense,
		Layers:      layers,
		Vias:        vias,
	}
}
