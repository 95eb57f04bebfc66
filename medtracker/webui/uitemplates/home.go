package uitemplates

type HomeParams struct {
	ActiveUser ActiveUserParams
}

var homeText = `{{define "title"}}Ana Sayfa{{end}}

{{define "content"}}
<div class="p-5 mb-4 bg-body-tertiary rounded-3">
  <h1 class="display-5 fw-bold">İlaç Cebimde</h1>
  <p class="col-md-8 fs-5">Hastalarınızın ilaçlarını ve ilaç alım geçmişini tek yerden yönetin.</p>
  {{if .ActiveUser.SignedIn}}
  <a class="btn btn-primary btn-lg" href="/yonetim">Panele Git</a>
  {{else}}
  <a class="btn btn-primary btn-lg" href="/login">Giriş Yap</a>
  <a class="btn btn-outline-secondary btn-lg" href="/register">Kayıt Ol</a>
  {{end}}
</div>
{{end}}
`

var HomeTemplate = page(homeText)
