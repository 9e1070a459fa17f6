package browser

const hideWebdriverScript = `Object.defineProperty(navigator, 'webdriver', {
	get: () => undefined
});`

// submitScript fills the prompt field and, after a short pause for the app to
// enable its send button, clicks it or falls back to an Enter keydown.
const submitScript = `(text) => {
	let input = null;
	const rich = document.querySelector('rich-textarea');
	if (rich) {
		input = rich.querySelector('p[contenteditable="true"]') ||
			rich.querySelector('div[contenteditable="true"]') ||
			rich.querySelector('[contenteditable="true"]');
	}
	if (!input) {
		input = document.querySelector('[contenteditable="true"]');
	}
	if (!input) {
		return false;
	}

	input.focus();
	input.textContent = text;
	input.dispatchEvent(new Event('input', { bubbles: true }));
	input.dispatchEvent(new Event('change', { bubbles: true }));

	setTimeout(() => {
		const send = document.querySelector('button[aria-label*="Send"]') ||
			document.querySelector('button[type="submit"]') ||
			Array.from(document.querySelectorAll('button')).find((btn) =>
				(btn.getAttribute('aria-label') || '').includes('Send') ||
				btn.textContent.includes('Send'));
		if (send) {
			send.click();
			return;
		}
		input.dispatchEvent(new KeyboardEvent('keydown', {
			key: 'Enter',
			code: 'Enter',
			keyCode: 13,
			which: 13,
			bubbles: true,
		}));
	}, 500);
	return true;
}`
