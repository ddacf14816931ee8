package main

import "testing"

func TestParseArgs(t *testing.T) {
	cases := []struct {
		args    []string
		want    command
		wantErr bool
	}{
		{nil, command{name: "up"}, false},
		{[]string{"up"}, command{name: "up"}, false},
		{[]string{"down"}, command{name: "down", value: 1}, false},
		{[]string{"down", "3"}, command{name: "down", value: 3}, false},
		{[]string{"down", "0"}, command{}, true},
		{[]string{"force", "4"}, command{name: "force", value: 4}, false},
		{[]string{"force"}, command{}, true},
		{[]string{"force", "x"}, command{}, true},
		{[]string{"VERSION"}, command{name: "version"}, false},
		{[]string{"sideways"}, command{}, true},
	}
	for _, tc := range cases {
		got, err := parseArgs(tc.args)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("%v: expected error", tc.args)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%v: unexpected error %v", tc.args, err)
		}
		if got != tc.want {
			t.Fatalf("%v: expected %+v, got %+v", tc.args, tc.want, got)
		}
	}
}
