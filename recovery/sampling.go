package recovery

// ExpandTensorGrid expands a tensor parametrization point to an
// unstructured one. Takes as input a tensor mesh, for instance
//
//	in[0] = {0,1,2}
//	in[1] = {2,3,5}
//
// and expands this to an unstructured representation, i.e.,
//
//	out[0] = {0,1,2,0,1,2,0,1,2}
//	out[1] = {2,2,2,3,3,3,5,5,5}
func ExpandTensorGrid(in [2][]float64) (out [2][]float64) {
	var (
		n  = len(in[0]) * len(in[1])
		ip int
	)
	out[0] = make([]float64, n)
	out[1] = make([]float64, n)
	for j := 0; j < len(in[1]); j++ {
		for i := 0; i < len(in[0]); i++ {
			out[0][ip] = in[0][i]
			out[1][ip] = in[1][j]
			ip++
		}
	}
	return
}
