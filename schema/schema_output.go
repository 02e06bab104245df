package schema

// MetalIndexOutput is the serialized form of a MetalIndex.
type MetalIndexOutput struct {
	Qi  *float64 `json:"qi"`
	Wi  float64  `json:"wi"`
	SIi *float64 `json:"sii"`
}

// SampleOutput is the serialized form of a SampleResult. Index values are
// rounded here and nowhere earlier.
type SampleOutput struct {
	SampleID       string                         `json:"sample_id"`
	Location       string                         `json:"location,omitempty"`
	Concentrations map[MetalKind]*float64         `json:"concentrations"`
	NoOfMetals     int                            `json:"no_of_metals"`
	Indices        map[MetalKind]MetalIndexOutput `json:"indices"`
	HMPI           *float64                       `json:"hmpi"`
	RiskCategory   RiskCategory                   `json:"risk_category,omitempty"`
	Geometry       *Coordinates                   `json:"geometry"`
}

// ClusterZoneOutput is the serialized form of a ClusterZone.
type ClusterZoneOutput struct {
	ClusterID    int          `json:"cluster_id"`
	AvgHMPI      float64      `json:"avg_hmpi"`
	RiskCategory RiskCategory `json:"risk_category"`
	Color        string       `json:"color"`
	Points       [][2]float64 `json:"points"`
}

// ClusterOutput is the serialized form of a ClusterResult.
type ClusterOutput struct {
	Clusters []ClusterZoneOutput `json:"clusters"`
}

// NewSampleOutput converts a result into its serialized form.
func NewSampleOutput(r SampleResult) SampleOutput {
	out := SampleOutput{
		SampleID:       r.Sample.ID,
		Location:       r.Sample.Location,
		Concentrations: make(map[MetalKind]*float64, len(r.Indices)),
		NoOfMetals:     r.MetalCount(),
		Indices:        make(map[MetalKind]MetalIndexOutput, len(r.Indices)),
		RiskCategory:   r.Category,
		Geometry:       r.Sample.Coords,
	}
	for _, mi := range r.Indices {
		conc, qi, sii := None(), None(), None()
		if mi.Valid {
			conc, qi, sii = Some(mi.Ci), Some(mi.Qi), Some(mi.SIi)
		}
		out.Concentrations[mi.Metal] = roundPtr(conc, IndexPrecision)
		out.Indices[mi.Metal] = MetalIndexOutput{
			Qi:  roundPtr(qi, IndexPrecision),
			Wi:  Round4(mi.Wi),
			SIi: roundPtr(sii, IndexPrecision),
		}
	}
	if r.Defined {
		h := Round4(r.HMPI)
		out.HMPI = &h
	}
	return out
}

// NewSampleOutputs converts every sample of an index result.
func NewSampleOutputs(res IndexResult) []SampleOutput {
	out := make([]SampleOutput, len(res.Samples))
	for i, r := range res.Samples {
		out[i] = NewSampleOutput(r)
	}
	return out
}

// NewClusterOutput converts a clustering result into its serialized form.
// Cluster averages are reported with two decimals.
func NewClusterOutput(res ClusterResult) ClusterOutput {
	out := ClusterOutput{Clusters: make([]ClusterZoneOutput, 0, len(res.Zones))}
	for _, z := range res.Zones {
		pts := make([][2]float64, len(z.Points))
		for i, p := range z.Points {
			pts[i] = [2]float64{p.Lat, p.Lon}
		}
		out.Clusters = append(out.Clusters, ClusterZoneOutput{
			ClusterID:    z.ClusterID,
			AvgHMPI:      RoundTo(z.AvgValue, ClusterPrecision),
			RiskCategory: z.Category,
			Color:        z.Color,
			Points:       pts,
		})
	}
	return out
}
