package union_test

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/jaeyoung0509/union"
)

func ExampleUnion() {
	// 1) Create union.
	u := union.New("crawler")

	// 2) Create members; they are not running yet.
	ok, _ := u.NewMember(func(context.Context) error { return nil })
	bad, _ := u.NewMember(func(context.Context) error { return errors.New("boom") })
	fmt.Println(ok.Name(), bad.Name(), u.TotalSize())

	// 3) Start them when ready.
	_ = ok.Start()
	_ = bad.Start()

	// 4) Seal the union and wait for members to drain.
	u.Shutdown()
	u.AwaitTermination()

	// 5) Inspect outcomes. Order follows termination, so sort for display.
	results := u.Results()
	sort.Slice(results, func(i, j int) bool { return results[i].Name < results[j].Name })
	for _, res := range results {
		fmt.Println(res.Name, res.Err)
	}
	fmt.Println(u.IsFinished())
	// Output:
	// crawler-worker-0 crawler-worker-1 2
	// crawler-worker-0 <nil>
	// crawler-worker-1 boom
	// true
}

func ExampleUnion_Shutdown() {
	u := union.New("ticker")

	m, _ := u.NewMember(func(ctx context.Context) error {
		<-ctx.Done()
		return context.Cause(ctx)
	})
	_ = m.Start()

	// Shutdown interrupts running members and rejects new ones.
	u.Shutdown()
	_, err := u.NewMember(func(context.Context) error { return nil })
	fmt.Println(errors.Is(err, union.ErrShutdown))

	u.AwaitTermination()
	fmt.Println(errors.Is(u.Results()[0].Err, union.ErrShutdown))
	fmt.Println(u.TotalSize(), u.ActiveSize())
	// Output:
	// true
	// true
	// 1 0
}
