package browser

import (
	"fmt"
)

// PageSnapshot is one observation of the current page.
type PageSnapshot struct {
	URL   string
	Title string
	// accessibility-tree style outline; interactive nodes carry their data-ai-id
	Tree string
	// body markup without scripts and styles
	HTML string
}

const maxHTMLChars = 60000

// snapshotScript stamps every visible interactive element with data-ai-id and
// returns {tree, html}. Elements outside the viewport are skipped until the
// agent scrolls to them.
const snapshotScript = `() => {
	let nextID = 1;
	const interactiveTags = new Set(['a', 'button', 'input', 'textarea', 'select', 'details', 'summary', 'option']);
	const interactiveRoles = new Set(['button', 'link', 'checkbox', 'radio', 'menuitem', 'tab', 'textbox', 'combobox', 'option', 'switch', 'searchbox']);
	const skipTags = new Set(['script', 'style', 'svg', 'path', 'noscript', 'template']);

	document.querySelectorAll('[data-ai-id]').forEach(el => el.removeAttribute('data-ai-id'));

	function clean(text, limit) {
		if (!text) return '';
		const res = text.replace(/\s+/g, ' ').trim();
		return res.length > limit ? res.slice(0, limit) + '...' : res;
	}

	function quote(text) {
		return "'" + text.replace(/'/g, "\\'") + "'";
	}

	function visible(el) {
		if (!el.getBoundingClientRect) return false;
		if (el.getAttribute('aria-hidden') === 'true') return false;
		const r = el.getBoundingClientRect();
		const s = window.getComputedStyle(el);
		return r.width > 0 && r.height > 0 &&
			r.top < window.innerHeight && r.bottom > 0 &&
			r.left < window.innerWidth && r.right > 0 &&
			s.visibility !== 'hidden' && s.display !== 'none' && s.opacity !== '0';
	}

	function interactive(el) {
		const tag = el.tagName.toLowerCase();
		const role = (el.getAttribute('role') || '').toLowerCase();
		const tabIndex = el.getAttribute('tabindex');
		return interactiveTags.has(tag) || interactiveRoles.has(role) ||
			(tabIndex !== null && tabIndex !== '-1') || el.onclick != null ||
			el.isContentEditable;
	}

	function role(el) {
		const explicit = (el.getAttribute('role') || '').toLowerCase();
		if (explicit) return explicit;
		const tag = el.tagName.toLowerCase();
		const type = (el.getAttribute('type') || 'text').toLowerCase();
		switch (tag) {
			case 'a': return 'link';
			case 'button': case 'summary': return 'button';
			case 'select': return 'combobox';
			case 'textarea': return 'textbox';
			case 'option': return 'option';
			case 'input':
				if (type === 'checkbox') return 'checkbox';
				if (type === 'radio') return 'radio';
				if (type === 'search') return 'searchbox';
				if (type === 'submit' || type === 'button' || type === 'reset') return 'button';
				if (type === 'file') return 'button';
				return 'textbox';
		}
		return el.isContentEditable ? 'textbox' : 'generic';
	}

	function name(el) {
		const tag = el.tagName.toLowerCase();
		let n = clean(el.getAttribute('aria-label'), 100);
		if (!n && tag !== 'select') n = clean(el.innerText || el.textContent, 100);
		if (!n) n = clean(el.getAttribute('title'), 100);
		if (!n && (tag === 'input' || tag === 'textarea')) n = clean(el.getAttribute('placeholder'), 100);
		if (!n && el.labels && el.labels.length) n = clean(el.labels[0].innerText, 100);
		return n;
	}

	function props(el) {
		const out = [];
		const tag = el.tagName.toLowerCase();
		if ((tag === 'input' || tag === 'textarea' || tag === 'select') && el.value) {
			out.push('value=' + quote(clean(el.value, 100)));
		}
		if (el.checked) out.push('checked');
		if (el.disabled) out.push('disabled');
		if (document.activeElement === el) out.push('focused');
		if (el.getAttribute('aria-expanded') === 'true') out.push('expanded');
		if (tag === 'a' && el.getAttribute('href')) out.push('url=' + quote(clean(el.getAttribute('href'), 120)));
		return out.length ? ', ' + out.join(', ') : '';
	}

	function walk(node, depth) {
		if (!node || depth > 25) return '';
		const indent = '\t'.repeat(depth);

		if (node.nodeType === Node.TEXT_NODE) {
			const text = clean(node.textContent, 150);
			return text.length > 2 ? indent + 'StaticText ' + quote(text) + '\n' : '';
		}
		if (node.nodeType !== Node.ELEMENT_NODE) return '';

		const el = node;
		const tag = el.tagName.toLowerCase();
		if (skipTags.has(tag) || !visible(el)) return '';

		if (interactive(el)) {
			const id = String(nextID++);
			el.setAttribute('data-ai-id', id);
			let line = indent + '[' + id + '] ' + role(el);
			const n = name(el);
			if (n) line += ' ' + quote(n);
			let out = line + props(el) + '\n';
			if (tag === 'select') {
				for (const child of el.children) out += walk(child, depth + 1);
			}
			return out;
		}

		let out = '';
		let childDepth = depth;
		if (/^h[1-6]$/.test(tag)) {
			return indent + 'heading ' + quote(clean(el.innerText, 150)) + '\n';
		}
		const r = (el.getAttribute('role') || '').toLowerCase();
		if (r === 'dialog' || r === 'alertdialog' || el.getAttribute('aria-modal') === 'true') {
			out += indent + 'dialog ' + quote(clean(el.getAttribute('aria-label'), 100)) + '\n';
			childDepth = depth + 1;
		}
		for (const child of el.childNodes) out += walk(child, childDepth);
		return out;
	}

	const tree = 'RootWebArea ' + quote(document.title) + '\n' + walk(document.body, 1);

	const body = document.body ? document.body.cloneNode(true) : null;
	let html = '';
	if (body) {
		body.querySelectorAll('script, style, svg, noscript, template, link, meta').forEach(el => el.remove());
		html = body.outerHTML;
	}
	return {tree: tree, html: html};
}`

// rawSnapshot is what snapshotScript returns.
type rawSnapshot struct {
	Tree string `json:"tree"`
	HTML string `json:"html"`
}

func fromEvaluate(result any) (rawSnapshot, error) {
	m, ok := result.(map[string]any)
	if !ok {
		return rawSnapshot{}, fmt.Errorf("expected object from snapshot script, got %T", result)
	}
	tree, _ := m["tree"].(string)
	html, _ := m["html"].(string)
	return rawSnapshot{Tree: tree, HTML: html}, nil
}

func newSnapshot(url, title string, raw rawSnapshot) *PageSnapshot {
	html := raw.HTML
	if len(html) > maxHTMLChars {
		html = html[:maxHTMLChars] + "..."
	}
	return &PageSnapshot{
		URL:   url,
		Title: title,
		Tree:  raw.Tree,
		HTML:  html,
	}
}
