package filters

import (
	"reflect"
	"testing"

	"github.com/kbukum/streamkit/fault"
	"github.com/kbukum/streamkit/stats"
	"github.com/kbukum/streamkit/stream"
)

func TestKeepNth(t *testing.T) {
	tests := []struct {
		name string
		n    int
		in   []int
		want []int
	}{
		{"every second of nine", 2, []int{1, 2, 3, 4, 5, 6, 7, 8, 9}, []int{2, 4, 6, 8}},
		{"every third", 3, []int{1, 2, 3, 4, 5, 6, 7}, []int{3, 6}},
		{"n of one passes all", 1, []int{5, 6, 7}, []int{5, 6, 7}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			src := stream.NewProducer[int]()
			keep := KeepNth[int](tc.n)

			var got []int
			dst := stream.NewConsumer[int](stream.HandlerFunc[int](func(sample int, _ stream.Metadata) {
				got = append(got, sample)
			}))

			keep.ConnectTo(src)
			dst.ConnectTo(keep)

			for _, v := range tc.in {
				src.Emit(v, stream.NewMetadata())
			}

			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestKeepNthRejectsBadStride(t *testing.T) {
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic")
		}
		if f, ok := r.(*fault.Fault); !ok || f.Code != fault.CodeBadArgument {
			t.Errorf("expected CodeBadArgument fault, got %v", r)
		}
	}()
	KeepNth[int](0)
}

func TestKeepNthIntoCapture(t *testing.T) {
	src := stream.NewProducer[int]()
	keep := KeepNth[int](2)
	cap := stats.NewCapture[int]()

	keep.ConnectTo(src)
	cap.ConnectTo(keep)

	for v := 1; v <= 6; v++ {
		src.Emit(v, stream.NewMetadata())
	}

	if want := []int{2, 4, 6}; !reflect.DeepEqual(cap.Samples(), want) {
		t.Errorf("expected %v, got %v", want, cap.Samples())
	}
}

func TestDropFirst(t *testing.T) {
	src := stream.NewProducer[int]()
	burn := DropFirst[int](3)

	var got []int
	dst := stream.NewConsumer[int](stream.HandlerFunc[int](func(sample int, _ stream.Metadata) {
		got = append(got, sample)
	}))

	burn.ConnectTo(src)
	dst.ConnectTo(burn)

	for v := 1; v <= 6; v++ {
		src.Emit(v, stream.NewMetadata())
	}

	if want := []int{4, 5, 6}; !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestDropFirstZeroPassesAll(t *testing.T) {
	src := stream.NewProducer[int]()
	burn := DropFirst[int](0)

	var count int
	dst := stream.NewConsumer[int](stream.HandlerFunc[int](func(int, stream.Metadata) { count++ }))

	burn.ConnectTo(src)
	dst.ConnectTo(burn)

	for v := 0; v < 4; v++ {
		src.Emit(v, stream.NewMetadata())
	}
	if count != 4 {
		t.Errorf("expected 4, got %d", count)
	}
}

func TestWhere(t *testing.T) {
	src := stream.NewProducer[int]()
	even := Where[int](func(sample int, _ stream.Metadata) bool {
		return sample%2 == 0
	})

	var got []int
	dst := stream.NewConsumer[int](stream.HandlerFunc[int](func(sample int, _ stream.Metadata) {
		got = append(got, sample)
	}))

	even.ConnectTo(src)
	dst.ConnectTo(even)

	for v := 1; v <= 6; v++ {
		src.Emit(v, stream.NewMetadata())
	}

	if want := []int{2, 4, 6}; !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestWherePredicateSeesMetadata(t *testing.T) {
	src := stream.NewProducer[int]()
	accepted := Where[int](func(_ int, md stream.Metadata) bool {
		ok, _ := stream.Value[bool](md, "accepted")
		return ok
	})

	var got []int
	dst := stream.NewConsumer[int](stream.HandlerFunc[int](func(sample int, _ stream.Metadata) {
		got = append(got, sample)
	}))

	accepted.ConnectTo(src)
	dst.ConnectTo(accepted)

	src.Emit(1, stream.NewMetadata().With("accepted", true))
	src.Emit(2, stream.NewMetadata().With("accepted", false))
	src.Emit(3, stream.NewMetadata()) // absent key reads as false

	if want := []int{1}; !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestConvert(t *testing.T) {
	src := stream.NewProducer[int]()
	toFloat := Convert[int, float64](func(v int) float64 { return float64(v) / 2 })

	var got []float64
	dst := stream.NewConsumer[float64](stream.HandlerFunc[float64](func(sample float64, _ stream.Metadata) {
		got = append(got, sample)
	}))

	toFloat.ConnectTo(src)
	dst.ConnectTo(toFloat)

	src.Emit(1, stream.NewMetadata())
	src.Emit(3, stream.NewMetadata())

	if want := []float64{0.5, 1.5}; !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestComponent(t *testing.T) {
	src := stream.NewProducer[[]float64]()
	second := Component(1)

	var got []float64
	dst := stream.NewConsumer[float64](stream.HandlerFunc[float64](func(sample float64, _ stream.Metadata) {
		got = append(got, sample)
	}))

	second.ConnectTo(src)
	dst.ConnectTo(second)

	src.Emit([]float64{1, 10}, stream.NewMetadata())
	src.Emit([]float64{2}, stream.NewMetadata()) // too short, dropped
	src.Emit([]float64{3, 30, 300}, stream.NewMetadata())

	if want := []float64{10, 30}; !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}
