package section

import "math"

// zone is one hydraulically independent region of a compound section
// under the Divided-Channel Method. The vertical division interfaces
// carry no shear and are excluded from the wetted perimeter.
type zone struct {
	HydraulicProperties
	ManningN float64 // zero for the main channel (supplied by the caller)
	Label    string
}

// zones partitions the wetted area at depth y into the main channel and
// every active berm (a berm is active once the water rises above its
// bench elevation).
func (s Compound) zones(y float64) []zone {
	out := make([]zone, 0, 1+len(s.Berms))

	mp := s.Main.Properties(y)
	out = append(out, zone{HydraulicProperties: mp, Label: "main"})

	for _, b := range s.Berms {
		h := y - b.Elevation
		if h <= 0 {
			continue
		}
		z := zone{ManningN: b.ManningN, Label: "berm"}
		z.Area = b.Width*h + b.Slope*h*h/2
		z.WettedPerimeter = b.Width + h*math.Sqrt(1+b.Slope*b.Slope)
		z.TopWidth = b.Width + b.Slope*h
		if z.WettedPerimeter > 0 {
			z.HydraulicRadius = z.Area / z.WettedPerimeter
		}
		if z.TopWidth > 0 {
			z.HydraulicDepth = z.Area / z.TopWidth
		}
		out = append(out, z)
	}
	return out
}

// ZoneFlow is the conveyance share of one DCM zone.
type ZoneFlow struct {
	Label           string
	Area            float64 // m²
	WettedPerimeter float64 // m
	HydraulicRadius float64 // m
	ManningN        float64
	Conveyance      float64 // K_i = A_i R_i^(2/3) / n_i
	DischargeShare  float64 // K_i / K
}

// CompoundFlow is the Divided-Channel Method decomposition of a compound
// section at one depth.
type CompoundFlow struct {
	Zones      []ZoneFlow
	Conveyance float64 // K = Σ K_i
	EquivalentN float64 // Lotter: (P / Σ(P_i/n_i^1.5))^(2/3)
	Alpha      float64 // Coriolis energy coefficient
	Beta       float64 // Boussinesq momentum coefficient
}

// Flow computes the DCM conveyance partition at depth y. mainN is the
// Manning roughness of the main channel (berms carry their own).
func (s Compound) Flow(y, mainN float64) CompoundFlow {
	zs := s.zones(clampDepth(y, s.Main.Depth))

	cf := CompoundFlow{Alpha: 1, Beta: 1, EquivalentN: mainN}
	var totalA, totalP float64
	var sumK, sumPOverN, sumK3A2, sumK2A float64

	for _, z := range zs {
		n := z.ManningN
		if n == 0 {
			n = mainN
		}
		if z.Area <= 0 || z.WettedPerimeter <= 0 || n <= 0 {
			continue
		}
		k := z.Area * math.Pow(z.HydraulicRadius, 2.0/3.0) / n
		cf.Zones = append(cf.Zones, ZoneFlow{
			Label:           z.Label,
			Area:            z.Area,
			WettedPerimeter: z.WettedPerimeter,
			HydraulicRadius: z.HydraulicRadius,
			ManningN:        n,
			Conveyance:      k,
		})
		totalA += z.Area
		totalP += z.WettedPerimeter
		sumK += k
		sumPOverN += z.WettedPerimeter / math.Pow(n, 1.5)
		sumK3A2 += k * k * k / (z.Area * z.Area)
		sumK2A += k * k / z.Area
	}

	cf.Conveyance = sumK
	if sumK <= 0 {
		return cf
	}
	for i := range cf.Zones {
		cf.Zones[i].DischargeShare = cf.Zones[i].Conveyance / sumK
	}
	if sumPOverN > 0 {
		cf.EquivalentN = math.Pow(totalP/sumPOverN, 2.0/3.0)
	}
	cf.Alpha = sumK3A2 * totalA * totalA / (sumK * sumK * sumK)
	cf.Beta = sumK2A * totalA / (sumK * sumK)
	return cf
}
