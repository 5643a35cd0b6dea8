package chunk

import "testing"

func TestDiscoverWebpackPublicPath(t *testing.T) {
	body := []byte(`var u = __webpack_require__.p + "chunk-42.js";`)
	got := Discover("https://example.com/main.js", body)
	if len(got) != 1 || got[0] != "https://example.com/chunk-42.js" {
		t.Fatalf("got %v", got)
	}
}

func TestDiscoverViteImportMetaURL(t *testing.T) {
	body := []byte(`const u = new URL('/assets/chunk-a1b2.js', import.meta.url);`)
	got := Discover("https://example.com/main.js", body)
	if len(got) != 1 || got[0] != "https://example.com/assets/chunk-a1b2.js" {
		t.Fatalf("got %v", got)
	}
}

func TestDiscoverDropsNonJSReferences(t *testing.T) {
	body := []byte(`const u = new URL('/assets/logo.png', import.meta.url);`)
	got := Discover("https://example.com/main.js", body)
	if len(got) != 0 {
		t.Fatalf("expected no chunk URLs, got %v", got)
	}
}

func TestQueueBoundsDepth(t *testing.T) {
	q := NewQueue(2)
	q.Push("root.js", 0, []string{"a.js"})
	q.Push("a.js", 1, []string{"b.js"})
	q.Push("b.js", 2, []string{"c.js"}) // depth+1 = 3 > maxDepth 2, dropped

	var urls []string
	for {
		item, ok := q.Pop()
		if !ok {
			break
		}
		urls = append(urls, item.URL)
	}
	if len(urls) != 2 {
		t.Fatalf("got %v, want 2 items (c.js dropped by depth bound)", urls)
	}
}
