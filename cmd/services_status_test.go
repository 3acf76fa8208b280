package cmd

import "testing"

func TestGetStatus(t *testing.T) {
	tests := []struct {
		name string
		svc  Service
		want ServiceStatus
	}{
		{
			name: "coming soon wins over everything",
			svc:  Service{ComingSoon: true, Error: true, Running: true, Downloading: true, Downloaded: true},
			want: StatusComingSoon,
		},
		{
			name: "error wins over running",
			svc:  Service{Error: true, Running: true, Downloaded: true},
			want: StatusError,
		},
		{
			name: "running wins over downloading",
			svc:  Service{Running: true, Downloading: true, Downloaded: true},
			want: StatusRunning,
		},
		{
			name: "downloading wins over downloaded",
			svc:  Service{Downloading: true, Downloaded: true},
			want: StatusDownloading,
		},
		{
			name: "downloaded but idle is stopped",
			svc:  Service{Downloaded: true},
			want: StatusStopped,
		},
		{
			name: "empty record is not downloaded",
			svc:  Service{},
			want: StatusNotDownloaded,
		},
		{
			name: "unrelated fields do not affect status",
			svc:  Service{ID: "diffusers", Name: "Stable Diffusion", Beta: true},
			want: StatusNotDownloaded,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetStatus(tt.svc); got != tt.want {
				t.Errorf("GetStatus() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGetStatusIsTotal(t *testing.T) {
	// Every combination of the five state bits resolves to a known status.
	known := make(map[ServiceStatus]bool)
	for _, s := range AllStatuses {
		known[s] = true
	}
	for mask := 0; mask < 32; mask++ {
		svc := Service{
			ComingSoon:  mask&1 != 0,
			Error:       mask&2 != 0,
			Running:     mask&4 != 0,
			Downloading: mask&8 != 0,
			Downloaded:  mask&16 != 0,
		}
		if got := GetStatus(svc); !known[got] {
			t.Errorf("GetStatus(%+v) = %q, not in AllStatuses", svc, got)
		}
	}
}

func TestIsAccessible(t *testing.T) {
	// Only coming_soon is blocked; every other defined status is accessible.
	for _, status := range AllStatuses {
		want := status != StatusComingSoon
		if got := IsAccessible(status); got != want {
			t.Errorf("IsAccessible(%q) = %v, want %v", status, got, want)
		}
	}
}

func TestIsAccessibleUnknownStatusDenied(t *testing.T) {
	if IsAccessible(ServiceStatus("bogus")) {
		t.Error("IsAccessible() granted access for an undefined status")
	}
}

func TestServiceTypeDefault(t *testing.T) {
	if got := (Service{}).Type(); got != ServiceTypeDocker {
		t.Errorf("Type() = %q, want %q", got, ServiceTypeDocker)
	}
	if got := (Service{ServiceType: "binary"}).Type(); got != "binary" {
		t.Errorf("Type() = %q, want %q", got, "binary")
	}
}
