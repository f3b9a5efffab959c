package scene

import "math"

// Vec3 is a point or direction in world space
type Vec3 struct {
	X, Y, Z float64
}

func (a Vec3) Add(b Vec3) Vec3 { return Vec3{a.X + b.X, a.Y + b.Y, a.Z + b.Z} }
func (a Vec3) Sub(b Vec3) Vec3 { return Vec3{a.X - b.X, a.Y - b.Y, a.Z - b.Z} }
func (a Vec3) Scale(s float64) Vec3 { return Vec3{a.X * s, a.Y * s, a.Z * s} }
func (a Vec3) Dot(b Vec3) float64 { return a.X*b.X + a.Y*b.Y + a.Z*b.Z }
func (a Vec3) Len() float64 { return math.Sqrt(a.Dot(a)) }
func (a Vec3) Cross(b Vec3) Vec3 {
	return Vec3{
		a.Y*b.Z - a.Z*b.Y,
		a.Z*b.X - a.X*b.Z,
		a.X*b.Y - a.Y*b.X,
	}
}

// Normalize returns a unit vector; the zero vector is returned unchanged
func (a Vec3) Normalize() Vec3 {
	l := a.Len()
	if l == 0 {
		return a
	}
	return a.Scale(1 / l)
}

// Vec2 is a point in normalized device coordinates, both axes in [-1, 1]
type Vec2 struct {
	X, Y float64
}

// Mat4 is a column-major 4x4 matrix, laid out like OpenGL expects
type Mat4 [16]float64

// Identity returns the identity matrix
func Identity() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Mul returns m * n
func (m Mat4) Mul(n Mat4) Mat4 {
	var r Mat4
	for col := 0; col < 4; col++ {
		for row := 0; row < 4; row++ {
			var sum float64
			for k := 0; k < 4; k++ {
				sum += m[k*4+row] * n[col*4+k]
			}
			r[col*4+row] = sum
		}
	}
	return r
}

// Transform applies m to the point v and returns clip coordinates
func (m Mat4) Transform(v Vec3) (x, y, z, w float64) {
	x = m[0]*v.X + m[4]*v.Y + m[8]*v.Z + m[12]
	y = m[1]*v.X + m[5]*v.Y + m[9]*v.Z + m[13]
	z = m[2]*v.X + m[6]*v.Y + m[10]*v.Z + m[14]
	w = m[3]*v.X + m[7]*v.Y + m[11]*v.Z + m[15]
	return
}

// Perspective builds a right-handed projection; fov is in degrees
func Perspective(fovDeg, aspect, near, far float64) Mat4 {
	f := 1 / math.Tan(fovDeg*math.Pi/360)
	var m Mat4
	m[0] = f / aspect
	m[5] = f
	m[10] = (far + near) / (near - far)
	m[11] = -1
	m[14] = 2 * far * near / (near - far)
	return m
}

// LookAt builds a view matrix
func LookAt(eye, center, up Vec3) Mat4 {
	f := center.Sub(eye).Normalize()
	s := f.Cross(up).Normalize()
	u := s.Cross(f)

	m := Identity()
	m[0], m[4], m[8] = s.X, s.Y, s.Z
	m[1], m[5], m[9] = u.X, u.Y, u.Z
	m[2], m[6], m[10] = -f.X, -f.Y, -f.Z
	m[12] = -s.Dot(eye)
	m[13] = -u.Dot(eye)
	m[14] = f.Dot(eye)
	return m
}

// Translate returns a translation matrix
func Translate(v Vec3) Mat4 {
	m := Identity()
	m[12], m[13], m[14] = v.X, v.Y, v.Z
	return m
}

// RotateY returns a rotation about the Y axis
func RotateY(rad float64) Mat4 {
	c, s := math.Cos(rad), math.Sin(rad)
	m := Identity()
	m[0], m[2] = c, -s
	m[8], m[10] = s, c
	return m
}

// RotateX returns a rotation about the X axis
func RotateX(rad float64) Mat4 {
	c, s := math.Cos(rad), math.Sin(rad)
	m := Identity()
	m[5], m[6] = c, s
	m[9], m[10] = -s, c
	return m
}
