package kubernetes

import (
	"context"
	"testing"
	"time"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/client/fake"

	sandboxv1alpha1 "sigs.k8s.io/agent-sandbox/api/v1alpha1"
	extensionsv1alpha1 "sigs.k8s.io/agent-sandbox/extensions/api/v1alpha1"
)

func testScheme(t *testing.T) *runtime.Scheme {
	t.Helper()
	scheme, err := NewScheme()
	if err != nil {
		t.Fatalf("NewScheme: %v", err)
	}
	return scheme
}

// simulateReady creates a ready Sandbox for the given claim name, the
// way the agent-sandbox controller would.
func simulateReady(t *testing.T, c client.Client, name, namespace, fqdn string) {
	t.Helper()
	ready := []metav1.Condition{{
		Type:               string(sandboxv1alpha1.SandboxConditionReady),
		Status:             metav1.ConditionTrue,
		LastTransitionTime: metav1.Now(),
		Reason:             "Ready",
	}}
	sandbox := &sandboxv1alpha1.Sandbox{
		ObjectMeta: metav1.ObjectMeta{Name: name, Namespace: namespace},
	}
	if err := c.Create(context.Background(), sandbox); err != nil {
		t.Fatalf("simulateReady: create sandbox: %v", err)
	}
	sandbox.Status.ServiceFQDN = fqdn
	sandbox.Status.Conditions = ready
	if err := c.Status().Update(context.Background(), sandbox); err != nil {
		t.Fatalf("simulateReady: update status: %v", err)
	}
}

func TestAcquireAndRelease(t *testing.T) {
	scheme := testScheme(t)
	c := fake.NewClientBuilder().WithScheme(scheme).WithStatusSubresource(&sandboxv1alpha1.Sandbox{}).Build()

	acquirer := NewClaimAcquirer(c, "viz-template", "default", 5*time.Second)

	origGen := generateClaimNameFn
	generateClaimNameFn = func() string { return "viz-claim-001" }
	defer func() { generateClaimNameFn = origGen }()

	go func() {
		time.Sleep(200 * time.Millisecond)
		simulateReady(t, c, "viz-claim-001", "default", "sandbox-001.default.svc.cluster.local")
	}()

	url, release, err := acquirer.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	if url != "http://sandbox-001.default.svc.cluster.local:8080" {
		t.Errorf("url = %q, want sandbox service URL", url)
	}

	claim := &extensionsv1alpha1.SandboxClaim{}
	if err := c.Get(context.Background(), client.ObjectKey{Name: "viz-claim-001", Namespace: "default"}, claim); err != nil {
		t.Fatalf("SandboxClaim not found: %v", err)
	}
	if claim.Spec.TemplateRef.Name != "viz-template" {
		t.Errorf("templateRef = %q, want \"viz-template\"", claim.Spec.TemplateRef.Name)
	}

	release()

	if err := c.Get(context.Background(), client.ObjectKey{Name: "viz-claim-001", Namespace: "default"}, claim); err == nil {
		t.Error("SandboxClaim still exists after release, expected deletion")
	}
}

func TestAcquireTimeout(t *testing.T) {
	scheme := testScheme(t)
	c := fake.NewClientBuilder().WithScheme(scheme).WithStatusSubresource(&sandboxv1alpha1.Sandbox{}).Build()

	acquirer := NewClaimAcquirer(c, "viz-template", "default", 1*time.Second)

	origGen := generateClaimNameFn
	generateClaimNameFn = func() string { return "viz-claim-timeout" }
	defer func() { generateClaimNameFn = origGen }()

	// No Sandbox is ever created, so Acquire must time out and clean up.
	if _, _, err := acquirer.Acquire(context.Background()); err == nil {
		t.Fatal("expected timeout error, got nil")
	}

	claim := &extensionsv1alpha1.SandboxClaim{}
	if err := c.Get(context.Background(), client.ObjectKey{Name: "viz-claim-timeout", Namespace: "default"}, claim); err == nil {
		t.Error("SandboxClaim still exists after timeout, expected cleanup")
	}
}

func TestAcquireContextCancelled(t *testing.T) {
	scheme := testScheme(t)
	c := fake.NewClientBuilder().WithScheme(scheme).WithStatusSubresource(&sandboxv1alpha1.Sandbox{}).Build()

	acquirer := NewClaimAcquirer(c, "viz-template", "default", 30*time.Second)

	origGen := generateClaimNameFn
	generateClaimNameFn = func() string { return "viz-claim-cancel" }
	defer func() { generateClaimNameFn = origGen }()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(200 * time.Millisecond)
		cancel()
	}()

	if _, _, err := acquirer.Acquire(ctx); err == nil {
		t.Fatal("expected context cancellation error, got nil")
	}

	claim := &extensionsv1alpha1.SandboxClaim{}
	if err := c.Get(context.Background(), client.ObjectKey{Name: "viz-claim-cancel", Namespace: "default"}, claim); err == nil {
		t.Error("SandboxClaim still exists after context cancel, expected cleanup")
	}
}
