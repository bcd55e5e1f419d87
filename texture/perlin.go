package texture

import (
	"math"

	"whitted/vmath/vec3"
)

// hashmul is a multiplicative hash in Knuth's style.  Only the low 24 input
// bits are significant.
func hashmul(x uint32) uint32 {
	x = ((x >> 16) ^ x) * 0x45d9f3b
	x = ((x >> 16) ^ x) * 0x45d9f3b
	x = ((x >> 16) ^ x)
	return x
}

// perlinDotGrad dots the offset (d0, d1, d2) with the pseudo-random gradient
// assigned to lattice cell (c0, c1, c2).  The gradients are the twelve edge
// midpoints of a cube, with four repeated to fill sixteen slots.
func perlinDotGrad(c0, c1, c2 uint32, d0, d1, d2 float64) float64 {
	hash := hashmul(((c0 & 0xff) << 16) | ((c1 & 0xff) << 8) | (c2 & 0xff))

	switch hash & 0x0f {
	case 0x0, 0xc:
		return d0 + d1
	case 0x1:
		return d0 - d1
	case 0x2, 0xd:
		return -d0 + d1
	case 0x3:
		return -d0 - d1
	case 0x4:
		return d1 + d2
	case 0x5:
		return d1 - d2
	case 0x6, 0xe:
		return -d1 + d2
	case 0x7, 0xf:
		return -d1 - d2
	case 0x8:
		return d2 + d0
	case 0x9:
		return d2 - d0
	case 0xa:
		return -d2 + d0
	default:
		return -d2 - d0
	}
}

func fade(x float64) float64 {
	return x * x * x * (x*(x*6.0-15.0) + 10.0)
}

func lerp(t, a, b float64) float64 {
	return (1-t)*a + t*b
}

// perlin is gradient noise with unit lattice spacing.  Its value lies in
// [-1, 1] and is zero at every lattice point.
func perlin(p vec3.T) float64 {
	fx, fy, fz := math.Floor(p[0]), math.Floor(p[1]), math.Floor(p[2])

	cx := uint32(int32(fx) & 0xff)
	cy := uint32(int32(fy) & 0xff)
	cz := uint32(int32(fz) & 0xff)

	x := p[0] - fx
	y := p[1] - fy
	z := p[2] - fz

	u, v, w := fade(x), fade(y), fade(z)

	return lerp(w,
		lerp(v,
			lerp(u,
				perlinDotGrad(cx+0, cy+0, cz+0, x-0, y-0, z-0),
				perlinDotGrad(cx+1, cy+0, cz+0, x-1, y-0, z-0),
			),
			lerp(u,
				perlinDotGrad(cx+0, cy+1, cz+0, x-0, y-1, z-0),
				perlinDotGrad(cx+1, cy+1, cz+0, x-1, y-1, z-0),
			),
		),
		lerp(v,
			lerp(u,
				perlinDotGrad(cx+0, cy+0, cz+1, x-0, y-0, z-1),
				perlinDotGrad(cx+1, cy+0, cz+1, x-1, y-0, z-1),
			),
			lerp(u,
				perlinDotGrad(cx+0, cy+1, cz+1, x-0, y-1, z-1),
				perlinDotGrad(cx+1, cy+1, cz+1, x-1, y-1, z-1),
			),
		),
	)
}
