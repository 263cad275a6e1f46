package labelwire_test

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/centraunit/labelwire"
	"github.com/centraunit/labelwire/mock"
)

type ConcurrentTestSuite struct {
	suite.Suite
	c *labelwire.Container
}

func (s *ConcurrentTestSuite) SetupTest() {
	s.c = labelwire.New()
}

// slowEngine counts its calls and sleeps so concurrent resolvers overlap.
func slowEngine(calls *atomic.Int32) labelwire.Factory {
	return func(...any) (any, error) {
		calls.Add(1)
		time.Sleep(10 * time.Millisecond)
		return mock.NewPetrolEngine(), nil
	}
}

func (s *ConcurrentTestSuite) resolveConcurrently(c *labelwire.Container, expression string, n int) []any {
	var wg sync.WaitGroup
	results := make([]any, n)
	errs := make(chan error, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			v, err := c.Resolve(expression)
			if err != nil {
				errs <- err
				return
			}
			results[id] = v
		}(i)
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		s.NoError(err)
	}
	return results
}

func (s *ConcurrentTestSuite) TestSingletonCreatedOnce() {
	var calls atomic.Int32
	s.Require().NoError(s.c.SingletonFn("engine", slowEngine(&calls)))

	results := s.resolveConcurrently(s.c, "engine", 20)
	s.Equal(int32(1), calls.Load())
	for _, v := range results {
		s.Same(results[0], v)
	}
}

func (s *ConcurrentTestSuite) TestSingletonAcrossScopes() {
	var calls atomic.Int32
	s.Require().NoError(s.c.SingletonFn("engine", slowEngine(&calls)))

	var wg sync.WaitGroup
	results := make([]any, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			v, err := s.c.Scope().Resolve("engine")
			s.NoError(err)
			results[id] = v
		}(i)
	}
	wg.Wait()

	s.Equal(int32(1), calls.Load())
	for _, v := range results {
		s.Same(results[0], v)
	}
}

func (s *ConcurrentTestSuite) TestScopedCreatedOncePerScope() {
	var calls atomic.Int32
	s.Require().NoError(s.c.ScopedFn("engine", slowEngine(&calls)))

	first := s.c.Scope()
	second := s.c.Scope()
	a := s.resolveConcurrently(first, "engine", 10)
	b := s.resolveConcurrently(second, "engine", 10)

	s.Equal(int32(2), calls.Load())
	for i := range a {
		s.Same(a[0], a[i])
		s.Same(b[0], b[i])
	}
	s.NotSame(a[0], b[0])
}

func (s *ConcurrentTestSuite) TestTransientAlwaysCreated() {
	var calls atomic.Int32
	s.Require().NoError(s.c.TransientFn("engine", slowEngine(&calls)))

	results := s.resolveConcurrently(s.c, "engine", 10)
	s.Equal(int32(10), calls.Load())

	seen := make(map[any]bool, len(results))
	for _, v := range results {
		s.False(seen[v])
		seen[v] = true
	}
}

func (s *ConcurrentTestSuite) TestConcurrentWiredGraph() {
	s.Require().NoError(s.c.Singleton("engine", mock.NewPetrolEngine))
	s.Require().NoError(s.c.Scoped("car", mock.NewCar, labelwire.WithWiring(labelwire.Args("engine"))))
	s.Require().NoError(s.c.Scoped("seat", mock.NewSeat))
	s.Require().NoError(s.c.Transient("driver", mock.NewDriver))

	scope := s.c.Scope()
	results := s.resolveConcurrently(scope, "driver", 20)

	first := results[0].(*mock.Driver)
	for _, v := range results {
		d := v.(*mock.Driver)
		s.Same(first.Seat, d.Seat)
		s.Same(first.Seat.Car.Engine, d.Seat.Car.Engine)
	}
}

func (s *ConcurrentTestSuite) TestConcurrentRegistration() {
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			s.NoError(s.c.Transient("engine", mock.NewPetrolEngine))
		}()
		go func() {
			defer wg.Done()
			_, _ = s.c.ResolveAll("engine")
		}()
	}
	wg.Wait()

	all, err := s.c.ResolveAll("engine")
	s.Require().NoError(err)
	s.Len(all, 10)
}

func TestConcurrentSuite(t *testing.T) {
	suite.Run(t, new(ConcurrentTestSuite))
}
