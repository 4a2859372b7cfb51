package html

// CSRFFormScript copies the CSRF cookie into a hidden _csrf field of every
// POST form, and into the X-CSRF-Token header of same-origin fetch calls.
func CSRFFormScript() string {
	return `<script>
(function () {
  function getCookie(name) {
    var prefix = name + "=";
    var parts = document.cookie ? document.cookie.split(";") : [];
    for (var i = 0; i < parts.length; i++) {
      var c = parts[i].trim();
      if (c.indexOf(prefix) === 0) return decodeURIComponent(c.substring(prefix.length));
    }
    return "";
  }

  var nativeFetch = window.fetch;
  if (nativeFetch) {
    window.fetch = function (input, init) {
      init = init || {};
      var method = (init.method || "GET").toUpperCase();
      if (method !== "GET" && method !== "HEAD") {
        var headers = new Headers(init.headers || {});
        if (!headers.has("X-CSRF-Token")) headers.set("X-CSRF-Token", getCookie("X-CSRF-Token"));
        init.headers = headers;
      }
      return nativeFetch(input, init);
    };
  }

  function inject() {
    var token = getCookie("X-CSRF-Token");
    if (!token) return;
    var forms = document.querySelectorAll("form[method='post'], form[method='POST']");
    for (var i = 0; i < forms.length; i++) {
      if (forms[i].querySelector("input[name='_csrf']")) continue;
      var input = document.createElement("input");
      input.type = "hidden";
      input.name = "_csrf";
      input.value = token;
      forms[i].appendChild(input);
    }
  }

  if (document.readyState === "loading") {
    document.addEventListener("DOMContentLoaded", inject);
  } else {
    inject();
  }
})();
</script>`
}
