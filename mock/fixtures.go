// Package mock holds recipes and wiring fixtures shared by the container
// tests.
package mock

import (
	"errors"
	"sync/atomic"

	"github.com/centraunit/labelwire"
)

// Core interfaces
type Engine interface {
	FuelType() string
	Rev() string
}

// Engine implementations
type PetrolEngine struct {
	serial int64
}

func (e *PetrolEngine) FuelType() string { return "petrol" }
func (e *PetrolEngine) Rev() string      { return "putt-putt-putt-putt!" }
func (e *PetrolEngine) Serial() int64    { return e.serial }

type DieselEngine struct{}

func (e *DieselEngine) FuelType() string { return "diesel" }
func (e *DieselEngine) Rev() string      { return "BRUM BRUM BRUM" }

var engineSerial atomic.Int64

func NewPetrolEngine() *PetrolEngine {
	return &PetrolEngine{serial: engineSerial.Add(1)}
}

func NewDieselEngine() *DieselEngine {
	return &DieselEngine{}
}

// ErrEngineFailure is returned by NewFailingEngine.
var ErrEngineFailure = errors.New("simulated engine failure")

func NewFailingEngine() (*PetrolEngine, error) {
	return nil, ErrEngineFailure
}

// Car has no declared wiring; tests attach it with Wire.
type Car struct {
	Engine Engine
}

func (c *Car) FuelType() string { return c.Engine.FuelType() }

func NewCar(engine Engine) *Car {
	return &Car{Engine: engine}
}

// WiredCar declares its own wiring.
type WiredCar struct {
	Engine Engine
}

func (*WiredCar) Wiring() labelwire.Node { return labelwire.Args("engine") }

func NewWiredCar(engine Engine) *WiredCar {
	return &WiredCar{Engine: engine}
}

// Capture records the raw arguments it was constructed with.
type Capture struct {
	Args []any
}

func NewCapture(args ...any) *Capture {
	return &Capture{Args: args}
}

// Garage receives typed collections converted from sequences and records.
type Garage struct {
	Main   Engine
	Spares []Engine
	Named  map[string]Engine
	Bay    Bay
}

// Bay is filled from a record by field name or wire tag.
type Bay struct {
	Left  Engine
	Right Engine `wire:"starboard"`
}

func NewGarage(main Engine, spares []Engine, named map[string]Engine, bay Bay) *Garage {
	return &Garage{Main: main, Spares: spares, Named: named, Bay: bay}
}

// Circular dependency test types
type CircularA struct{ B *CircularB }
type CircularB struct{ A *CircularA }

func (*CircularA) Wiring() labelwire.Node { return labelwire.Args("circular_b") }
func (*CircularB) Wiring() labelwire.Node { return labelwire.Args("circular_a") }

func NewCircularA(b *CircularB) *CircularA { return &CircularA{B: b} }
func NewCircularB(a *CircularA) *CircularB { return &CircularB{A: a} }

// SelfLoop depends on its own label.
type SelfLoop struct{ Next *SelfLoop }

func (*SelfLoop) Wiring() labelwire.Node { return labelwire.Args("loop") }

func NewSelfLoop(next *SelfLoop) *SelfLoop { return &SelfLoop{Next: next} }

// Deep dependency chain: Driver -> Seat -> Car.
type Seat struct{ Car *Car }
type Driver struct{ Seat *Seat }

func (*Seat) Wiring() labelwire.Node   { return labelwire.Args("car") }
func (*Driver) Wiring() labelwire.Node { return labelwire.Args("seat") }

func NewSeat(car *Car) *Seat       { return &Seat{Car: car} }
func NewDriver(seat *Seat) *Driver { return &Driver{Seat: seat} }

// Trailer reads its wiring from a field, so its zero value cannot declare
// any.
type Trailer struct {
	hitch string
}

func (t *Trailer) Wiring() labelwire.Node { return labelwire.Args(t.hitch) }

func NewTrailer() *Trailer {
	return &Trailer{hitch: "engine"}
}
