package outwriter

import (
	"fmt"
	"io"

	"github.com/huangsam/hmpi/schema"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// samplePoint returns the position of a sample. GeoJSON orders coordinates lon, lat.
func samplePoint(c schema.Coordinates) orb.Point {
	return orb.Point{c.Lon, c.Lat}
}

// zoneGeometry collects the members of a zone into a multipoint.
func zoneGeometry(z schema.ClusterZone) orb.MultiPoint {
	mp := make(orb.MultiPoint, len(z.Points))
	for i, p := range z.Points {
		mp[i] = orb.Point{p.Lon, p.Lat}
	}
	return mp
}

// zoneCenter returns the center of the bounding box of a zone as (lat, lon).
func zoneCenter(z schema.ClusterZone) (float64, float64) {
	if len(z.Points) == 0 {
		return 0, 0
	}
	c := zoneGeometry(z).Bound().Center()
	return c.Lat(), c.Lon()
}

// sampleFeatures builds one point feature per sample that has coordinates.
func sampleFeatures(results []schema.IndexResult) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, res := range results {
		for _, out := range schema.NewSampleOutputs(res) {
			if out.Geometry == nil {
				continue
			}
			f := geojson.NewFeature(samplePoint(*out.Geometry))
			f.Properties["source"] = res.Source
			f.Properties["sample_id"] = out.SampleID
			if out.Location != "" {
				f.Properties["location"] = out.Location
			}
			f.Properties["no_of_metals"] = out.NoOfMetals
			f.Properties["hmpi"] = out.HMPI
			f.Properties["concentrations"] = out.Concentrations
			if out.RiskCategory != "" {
				f.Properties["risk_category"] = out.RiskCategory
				f.Properties["color"] = schema.RiskColor(out.RiskCategory)
			}
			fc.Append(f)
		}
	}
	return fc
}

// zoneFeatures builds one multipoint feature per zone.
func zoneFeatures(res schema.ClusterResult) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, z := range res.Zones {
		mp := zoneGeometry(z)
		f := geojson.NewFeature(mp)
		f.BBox = geojson.NewBBox(mp.Bound())
		f.Properties["cluster_id"] = z.ClusterID
		f.Properties["avg_hmpi"] = schema.RoundTo(z.AvgValue, schema.ClusterPrecision)
		f.Properties["risk_category"] = z.Category
		f.Properties["color"] = z.Color
		f.Properties["points"] = len(z.Points)
		ids := make([]string, len(z.Points))
		for i, p := range z.Points {
			ids[i] = p.ID
		}
		f.Properties["sample_ids"] = ids
		fc.Append(f)
	}
	return fc
}

func writeFeatureCollection(w io.Writer, fc *geojson.FeatureCollection) error {
	data, err := fc.MarshalJSON()
	if err != nil {
		return fmt.Errorf("failed to encode GeoJSON: %w", err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return err
	}
	return nil
}

func writeIndexGeoJSON(w io.Writer, results []schema.IndexResult) error {
	return writeFeatureCollection(w, sampleFeatures(results))
}

func writeClusterGeoJSON(w io.Writer, res schema.ClusterResult) error {
	return writeFeatureCollection(w, zoneFeatures(res))
}
