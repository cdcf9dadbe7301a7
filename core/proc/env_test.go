package proc

import (
	"fmt"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
)

func ExampleNewEnv() {
	env := NewEnv([]string{"A=B", "C=D", "E", "F=G=H"})

	fmt.Printf("Environ(): %q\n", env.Environ())
	fmt.Printf("Getenv(\"F\"): %q\n", env.Getenv("F"))

	// Output: Environ(): ["A=B" "C=D" "E=" "F=G=H"]
	// Getenv("F"): "G=H"
}

func ExampleEnv_With() {
	env := NewEnv([]string{"PATH=/bin", "HOME=/root"})

	fmt.Println(env.With([]string{"HOME=/tmp", "LANG=C", "HOME=/home/user"}))
	fmt.Println(env.Environ())

	// Output: [HOME=/home/user LANG=C PATH=/bin]
	// [HOME=/root PATH=/bin]
}

func ExampleEnv_LookupEnv() {
	env := &Env{}
	env.Setenv("A", "B")

	val, ok := env.LookupEnv("A")
	fmt.Println("Existing", "val:", val, "ok:", ok)
	env.Unsetenv("A")
	val, ok = env.LookupEnv("A")
	fmt.Println("Missing", "val:", val, "ok:", ok)

	// Output: Existing val: B ok: true
	// Missing val:  ok: false
}

func TestExitStatus(t *testing.T) {
	cause := fmt.Errorf("boom")

	cases := map[string]struct {
		status  ExitStatus
		success bool
		code    int
		str     string
	}{
		"zero":     {Exited(0), true, 0, "exit status 0"},
		"nonzero":  {Exited(2), false, 2, "exit status 2"},
		"signaled": {Signaled(syscall.SIGKILL), false, 137, "signal: killed"},
		"failed":   {Failed(cause), false, 1, "failed: boom"},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			assert.Equal(t, tc.success, tc.status.Success())
			assert.Equal(t, tc.code, tc.status.Code())
			assert.Equal(t, tc.str, tc.status.String())
		})
	}

	assert.Nil(t, Exited(1).Err())
	assert.Equal(t, cause, Failed(cause).Err())
}
