package progrock

import "github.com/vito/progrock"

// Vertex implements ports.Vertex wrapping *progrock.VertexRecorder.
type Vertex struct {
	vertex *progrock.VertexRecorder
}

// Write forwards page build output to the vertex's stdout stream.
func (v *Vertex) Write(p []byte) (int, error) {
	return v.vertex.Stdout().Write(p)
}

// Cached marks the vertex as a cache hit.
func (v *Vertex) Cached() {
	v.vertex.Cached()
}

// Done marks the vertex as finished, failed when err is non-nil.
func (v *Vertex) Done(err error) {
	v.vertex.Done(err)
}
