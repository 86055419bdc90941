// Package display renders clustering results for inspection: a text summary
// per cluster, a PNG of layer occupancy (gonum/plot) and an interactive HTML
// r-z scatter of the event (go-echarts).
package display
