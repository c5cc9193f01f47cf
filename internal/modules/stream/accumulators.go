package stream

// emaAcc is an SMA-seeded exponential average, matching the batch EMA.
type emaAcc struct {
	Period int     `msgpack:"period"`
	Count  int     `msgpack:"count"`
	Sum    float64 `msgpack:"sum"`
	Value  float64 `msgpack:"value"`
}

func (e *emaAcc) ready() bool { return e.Count >= e.Period }

func (e *emaAcc) add(x float64) {
	e.Count++
	switch {
	case e.Count < e.Period:
		e.Sum += x
	case e.Count == e.Period:
		e.Sum += x
		e.Value = e.Sum / float64(e.Period)
	default:
		k := 2 / float64(e.Period+1)
		e.Value = (x-e.Value)*k + e.Value
	}
}

// wilderAcc is a Wilder average seeded with the plain mean of the first
// Period inputs.
type wilderAcc struct {
	Period int     `msgpack:"period"`
	Count  int     `msgpack:"count"`
	Sum    float64 `msgpack:"sum"`
	Value  float64 `msgpack:"value"`
}

func (w *wilderAcc) ready() bool { return w.Count >= w.Period }

func (w *wilderAcc) add(x float64) {
	w.Count++
	p := float64(w.Period)
	switch {
	case w.Count < w.Period:
		w.Sum += x
	case w.Count == w.Period:
		w.Sum += x
		w.Value = w.Sum / p
	default:
		w.Value = (w.Value*(p-1) + x) / p
	}
}

// signalAcc smooths the MACD line; it starts at the first MACD value.
type signalAcc struct {
	Period  int     `msgpack:"period"`
	Started bool    `msgpack:"started"`
	Value   float64 `msgpack:"value"`
}

func (s *signalAcc) add(x float64) {
	if !s.Started {
		s.Started = true
		s.Value = x
		return
	}
	alpha := 2 / float64(s.Period+1)
	s.Value = alpha*x + (1-alpha)*s.Value
}
