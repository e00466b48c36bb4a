package analytic

import "math"

// BesselK returns the modified Bessel function of the second kind K_m(x) for
// integer order m and x > 0. K0 and K1 use the polynomial approximations of
// Abramowitz & Stegun 9.8.5-9.8.8 and higher orders the upward recurrence
// K_{n+1} = K_{n-1} + (2n/x)·K_n. It returns +Inf at x = 0 and NaN for x < 0.
func BesselK(m int, x float64) float64 {
	switch {
	case x < 0 || math.IsNaN(x):
		return math.NaN()
	case x == 0:
		return math.Inf(1)
	}
	if m < 0 {
		m = -m
	}
	k0, k1 := besselK0(x), besselK1(x)
	if m == 0 {
		return k0
	}
	for n := 1; n < m; n++ {
		k0, k1 = k1, k0+2*float64(n)/x*k1
	}
	return k1
}

func besselI0(x float64) float64 {
	t := x / 3.75
	t *= t
	return 1 + t*(3.5156229+t*(3.0899424+t*(1.2067492+t*(0.2659732+t*(0.0360768+t*0.0045813)))))
}

func besselI1(x float64) float64 {
	t := x / 3.75
	t *= t
	return x * (0.5 + t*(0.87890594+t*(0.51498869+t*(0.15084934+t*(0.02658733+t*(0.00301532+t*0.00032411))))))
}

func besselK0(x float64) float64 {
	if x <= 2 {
		t := x * x / 4
		return -math.Log(x/2)*besselI0(x) + (-0.57721566 + t*(0.42278420+t*(0.23069756+t*(0.03488590+t*(0.00262698+t*(0.00010750+t*0.0000074))))))
	}
	t := 2 / x
	return math.Exp(-x) / math.Sqrt(x) * (1.25331414 + t*(-0.07832358+t*(0.02189568+t*(-0.01062446+t*(0.00587872+t*(-0.00251540+t*0.00053208))))))
}

func besselK1(x float64) float64 {
	if x <= 2 {
		t := x * x / 4
		return math.Log(x/2)*besselI1(x) + (1/x)*(1+t*(0.15443144+t*(-0.67278579+t*(-0.18156897+t*(-0.01919402+t*(-0.00110404+t*(-0.00004686)))))))
	}
	t := 2 / x
	return math.Exp(-x) / math.Sqrt(x) * (1.25331414 + t*(0.23498619+t*(-0.03655620+t*(0.01504268+t*(-0.00780353+t*(0.00325614+t*(-0.00068245)))))))
}
