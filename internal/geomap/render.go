package geomap

import (
	"encoding/json"
	"fmt"
	"html/template"
	"io"
)

// Page configures a rendered map document.
type Page struct {
	Title     string
	Token     string
	Latitude  float64
	Longitude float64
	Zoom      int
	Trees     []TreeLocation
}

// RenderHTML writes a self-contained map page: a satellite basemap centered
// on the page's coordinate, one colored marker per tree, and a popup per
// marker showing the tree's identifier, type, and coordinates rounded to 4
// decimal places.
func RenderHTML(w io.Writer, page *Page) error {
	treesJSON, err := json.Marshal(page.Trees)
	if err != nil {
		return fmt.Errorf("failed to encode tree locations: %w", err)
	}

	data := struct {
		*Page
		TreesJSON template.JS
	}{Page: page, TreesJSON: template.JS(treesJSON)}

	if err := mapTemplate.Execute(w, data); err != nil {
		return fmt.Errorf("failed to render map page: %w", err)
	}
	return nil
}

var mapTemplate = template.Must(template.New("map").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<link href="https://api.mapbox.com/mapbox-gl-js/v3.3.0/mapbox-gl.css" rel="stylesheet">
<script src="https://api.mapbox.com/mapbox-gl-js/v3.3.0/mapbox-gl.js"></script>
<style>
  body { margin: 0; }
  #map { height: 100vh; }
  .tree-marker { width: 20px; height: 20px; border-radius: 50%; border: 2px solid white; }
  .tree-marker.mature { background: #2d8a34; }
  .tree-marker.young { background: #9ccc65; }
  .tree-marker.other { background: #f9a825; }
</style>
</head>
<body>
<div id="map"></div>
<script>
mapboxgl.accessToken = '{{.Token}}';
const map = new mapboxgl.Map({
  container: 'map',
  style: 'mapbox://styles/mapbox/satellite-streets-v12',
  center: [{{.Longitude}}, {{.Latitude}}],
  zoom: {{.Zoom}}
});
map.addControl(new mapboxgl.NavigationControl(), 'top-right');

const trees = {{.TreesJSON}};
map.on('load', () => {
  for (const tree of trees) {
    const el = document.createElement('div');
    const kind = tree.type.toLowerCase();
    el.className = 'tree-marker ' + (kind === 'mature' || kind === 'young' ? kind : 'other');
    const popup = new mapboxgl.Popup({ offset: 25 }).setHTML(
      '<strong>Tree ID:</strong> ' + tree.id + '<br>' +
      '<strong>Type:</strong> ' + tree.type + '<br>' +
      '<strong>Coordinates:</strong> ' + tree.latitude.toFixed(4) + '°, ' + tree.longitude.toFixed(4) + '°'
    );
    new mapboxgl.Marker(el)
      .setLngLat([tree.longitude, tree.latitude])
      .setPopup(popup)
      .addTo(map);
  }
});
</script>
</body>
</html>
`))
