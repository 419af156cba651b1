package math

// Vec2 represents a 2D vector
type Vec2 struct {
	X, Y float32
}

// Vec4 represents a 4D vector. Also used as an RGBA colour.
type Vec4 struct {
	X, Y, Z, W float32
}

func NewVec2(x, y float32) Vec2 {
	return Vec2{X: x, Y: y}
}

func NewVec4(x, y, z, w float32) Vec4 {
	return Vec4{X: x, Y: y, Z: z, W: w}
}

// Elements returns the components in x, y, z, w order.
func (v Vec4) Elements() [4]float32 {
	return [4]float32{v.X, v.Y, v.Z, v.W}
}

// Vec4FromSlice builds a Vec4 from the first four values of s. Missing values
// are left at zero.
func Vec4FromSlice(s []float32) Vec4 {
	var e [4]float32
	copy(e[:], s)
	return Vec4{X: e[0], Y: e[1], Z: e[2], W: e[3]}
}
